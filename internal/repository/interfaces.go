// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/Ultra-rd/Turkistn/internal/model"
)

// UserRepository はユーザープロフィールの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List は全ユーザーを作成日時の降順で返す。
	List(ctx context.Context) ([]*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// UpdateRole は指定ユーザーのロールを更新する。
	UpdateRole(ctx context.Context, id string, role model.Role) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するidentities、sessions、user_tour_agentsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// TourAgentRepository はツアーエージェントの永続化インターフェース。
type TourAgentRepository interface {
	// FindByID は指定IDのエージェントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.TourAgent, error)

	// List は全エージェントを作成日時の降順で返す。
	// limitが1以上の場合は先頭limit件に制限する。
	List(ctx context.Context, limit int) ([]*model.TourAgent, error)

	// ListWithNewsFeed はnews_feed_urlが設定されたエージェントを返す。
	// ニュースインポートワーカーのポーリング対象列挙に使用する。
	ListWithNewsFeed(ctx context.Context) ([]*model.TourAgent, error)

	// Create はエージェントを作成する。
	Create(ctx context.Context, agent *model.TourAgent) error

	// Update はエージェントの掲載情報を更新し、updated_atを現在時刻にする。
	Update(ctx context.Context, agent *model.TourAgent) error

	// UpdateNewsFeedURL はエージェントのニュースフィードURLを更新する。
	UpdateNewsFeedURL(ctx context.Context, id, feedURL string) error

	// UpdateLogo はエージェントのロゴ参照を更新する。
	UpdateLogo(ctx context.Context, id, logo string) error

	// DeleteByID は指定IDのエージェントを削除する。
	// 関連するposts、photos、tours、user_tour_agentsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// UserAgentLinkRow はユーザーIDとリンク済みエージェント要約を結合した行。
type UserAgentLinkRow struct {
	UserID string
	Agent  model.LinkedAgent
}

// LinkRepository はユーザーとエージェントのリンクの永続化インターフェース。
type LinkRepository interface {
	// FindByUserAndAgent はユーザーIDとエージェントIDでリンクを検索する。
	// 見つからない場合はnilを返す。
	FindByUserAndAgent(ctx context.Context, userID, agentID string) (*model.UserTourAgentLink, error)

	// Create はリンクを作成する。
	// (user_id, tour_agent_id)の一意制約に違反した場合はエラーを返す。
	Create(ctx context.Context, link *model.UserTourAgentLink) error

	// DeleteByUserAndAgent は両フィールドが一致するリンクを削除する。
	DeleteByUserAndAgent(ctx context.Context, userID, agentID string) error

	// DeleteByUserID は指定ユーザーの全リンクを削除する。
	DeleteByUserID(ctx context.Context, userID string) error

	// ListAllWithAgents は全リンクをエージェント名付きで返す。
	// 管理コンソールのユーザー一覧でユーザーごとに束ねて表示する。
	ListAllWithAgents(ctx context.Context) ([]UserAgentLinkRow, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.TourAgentPost, error)

	// FindByAgentAndGUID はtour_agent_idとsource_guidで投稿を検索する。
	// ニュースインポートの重複判定に使用する。見つからない場合はnilを返す。
	FindByAgentAndGUID(ctx context.Context, agentID, guid string) (*model.TourAgentPost, error)

	// ListByAgentID はエージェントの投稿一覧を作成日時の降順で返す。
	ListByAgentID(ctx context.Context, agentID string) ([]*model.TourAgentPost, error)

	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.TourAgentPost) error

	// Update は投稿のタイトル・本文・画像を更新し、updated_atを現在時刻にする。
	Update(ctx context.Context, post *model.TourAgentPost) error

	// DeleteByID は指定IDの投稿を削除する。
	DeleteByID(ctx context.Context, id string) error
}

// PhotoRepository は写真データの永続化インターフェース。
// 写真は作成後不変のため更新メソッドを持たない。
type PhotoRepository interface {
	// FindByID は指定IDの写真を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.TourAgentPhoto, error)

	// ListByAgentID はエージェントの写真一覧を作成日時の降順で返す。
	ListByAgentID(ctx context.Context, agentID string) ([]*model.TourAgentPhoto, error)

	// Create は写真を作成する。
	Create(ctx context.Context, photo *model.TourAgentPhoto) error

	// DeleteByID は指定IDの写真を削除する。
	DeleteByID(ctx context.Context, id string) error
}

// TourRepository はツアーデータの読み取りインターフェース。
// このAPIではツアーは読み取り専用。
type TourRepository interface {
	// ListByAgentID はエージェントのツアー一覧をfeatured優先で返す。
	ListByAgentID(ctx context.Context, agentID string) ([]*model.Tour, error)
}
