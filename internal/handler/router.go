package handler

import (
	"log/slog"
	"net/http"

	"github.com/Ultra-rd/Turkistn/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupAuthRoutes は認証関連のルーティングを設定したchi.Routerを返す。
func SetupAuthRoutes(service AuthServiceInterface, config AuthHandlerConfig) http.Handler {
	r := chi.NewRouter()
	h := NewAuthHandler(service, config)

	r.Route("/auth", func(r chi.Router) {
		// OAuthフロー
		r.Get("/google/login", h.Login)
		r.Get("/google/callback", h.Callback)

		// セッション管理
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	return r
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ディレクトリ（公開閲覧）
	DirectoryService DirectoryServiceInterface

	// 投稿・写真管理
	ContentManager ContentManagerInterface

	// 管理コンソール
	AdminConsole AdminConsoleInterface

	// ユーザー
	UserService UserServiceInterface

	// メトリクス（nilの場合は/metricsを公開しない）
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → Session → RateLimit(General)
//
// 公開ルート（/health、/api/agents、/metrics）と認証ルート（/auth/*）は
// セッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア（外側から リカバリ → ログ → セキュリティヘッダー → CORS）
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	dirHandler := NewDirectoryHandler(deps.DirectoryService)
	contentHandler := NewContentHandler(deps.ContentManager)
	adminHandler := NewAdminHandler(deps.AdminConsole)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.MetricsGatherer != nil {
		r.Get("/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}).ServeHTTP)
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// ディレクトリ閲覧（公開・読み取り専用）
	r.Get("/api/agents", dirHandler.ListAgents)
	r.Get("/api/agents/{id}", dirHandler.GetAgent)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 投稿・写真管理（更新系レート制限を追加）
		r.Route("/api/agents/{id}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(deps.RateLimiter.MutationMiddleware())

				r.Post("/posts", contentHandler.CreatePost)
				r.Put("/posts/{postID}", contentHandler.UpdatePost)
				r.Delete("/posts/{postID}", contentHandler.DeletePost)

				r.Post("/photos", contentHandler.CreatePhoto)
				r.Delete("/photos/{photoID}", contentHandler.DeletePhoto)
			})
		})

		// 管理コンソール（管理者チェックはサービス境界で行う）
		r.Route("/api/admin", func(r chi.Router) {
			r.Post("/agents", adminHandler.CreateAgent)
			r.Put("/agents/{id}", adminHandler.UpdateAgent)
			r.Delete("/agents/{id}", adminHandler.DeleteAgent)
			r.Post("/agents/{id}/news-feed", adminHandler.SetNewsFeed)

			r.Get("/users", adminHandler.ListUsers)
			r.Put("/users/{id}/role", adminHandler.SetUserRole)
			r.Post("/users/{id}/agents/{agentID}", adminHandler.LinkUserToAgent)
			r.Delete("/users/{id}/agents/{agentID}", adminHandler.UnlinkUserFromAgent)
		})

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/me", userHandler.Profile)
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
