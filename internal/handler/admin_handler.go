package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Ultra-rd/Turkistn/internal/admin"
	"github.com/Ultra-rd/Turkistn/internal/middleware"
	"github.com/Ultra-rd/Turkistn/internal/model"
	"github.com/go-chi/chi/v5"
)

// AdminConsoleInterface は管理ハンドラーが必要とするサービスインターフェース。
// 全操作で操作主体のユーザーIDを受け取り、サービス境界で管理者権限を再チェックする。
type AdminConsoleInterface interface {
	UpsertAgent(ctx context.Context, actorID string, in admin.AgentInput) (*model.TourAgent, error)
	DeleteAgent(ctx context.Context, actorID, agentID string) error
	SetUserRole(ctx context.Context, actorID, userID string, role model.Role) error
	LinkUserToAgent(ctx context.Context, actorID, userID, agentID string) error
	UnlinkUserFromAgent(ctx context.Context, actorID, userID, agentID string) error
	ListUsers(ctx context.Context, actorID string) ([]*model.UserWithAgents, error)
	SetNewsFeed(ctx context.Context, actorID, agentID, candidateURL string) (string, error)
}

// AdminHandler は管理コンソールのHTTPハンドラー。
type AdminHandler struct {
	console AdminConsoleInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(console AdminConsoleInterface) *AdminHandler {
	return &AdminHandler{
		console: console,
	}
}

// agentRequest はエージェント作成・更新リクエストのボディ。
type agentRequest struct {
	Name        string `json:"name"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`
}

// setRoleRequest はロール変更リクエストのボディ。
type setRoleRequest struct {
	Role string `json:"role"`
}

// setNewsFeedRequest はニュースフィード設定リクエストのボディ。
// URLが空の場合はエージェントのWebサイトから検出を試みる。
type setNewsFeedRequest struct {
	URL string `json:"url"`
}

// linkedAgentResponse はユーザー一覧に添えるリンク済みエージェントの要約。
type linkedAgentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// adminUserResponse は管理コンソールのユーザー一覧レスポンス。
type adminUserResponse struct {
	ID        string                `json:"id"`
	Email     string                `json:"email"`
	FullName  string                `json:"full_name"`
	Role      string                `json:"role"`
	CreatedAt string                `json:"created_at"`
	Agents    []linkedAgentResponse `json:"agents"`
}

// CreateAgent はエージェントを新規作成する。
// POST /api/admin/agents
func (h *AdminHandler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	h.upsertAgent(w, r, "")
}

// UpdateAgent は既存エージェントを更新する。
// PUT /api/admin/agents/:id
func (h *AdminHandler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	h.upsertAgent(w, r, chi.URLParam(r, "id"))
}

func (h *AdminHandler) upsertAgent(w http.ResponseWriter, r *http.Request, agentID string) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req agentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	agent, err := h.console.UpsertAgent(r.Context(), actorID, admin.AgentInput{
		ID:          agentID,
		Name:        req.Name,
		Logo:        req.Logo,
		Description: req.Description,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if agentID == "" {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(toAgentResponse(agent))
}

// DeleteAgent はエージェントを削除する。掲載コンテンツとリンクはDBのCASCADEで削除される。
// DELETE /api/admin/agents/:id
func (h *AdminHandler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	agentID := chi.URLParam(r, "id")

	if err := h.console.DeleteAgent(r.Context(), actorID, agentID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers は全ユーザーをリンク済みエージェント付きで返す。
// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	users, err := h.console.ListUsers(r.Context(), actorID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]adminUserResponse, len(users))
	for i, u := range users {
		agents := make([]linkedAgentResponse, len(u.Agents))
		for j, a := range u.Agents {
			agents[j] = linkedAgentResponse{ID: a.ID, Name: a.Name}
		}
		responses[i] = adminUserResponse{
			ID:        u.User.ID,
			Email:     u.User.Email,
			FullName:  u.User.FullName,
			Role:      string(u.User.Role),
			CreatedAt: u.User.CreatedAt.Format(time.RFC3339),
			Agents:    agents,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// SetUserRole は指定ユーザーのロールを変更する。
// PUT /api/admin/users/:id/role
func (h *AdminHandler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	userID := chi.URLParam(r, "id")

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if err := h.console.SetUserRole(r.Context(), actorID, userID, model.Role(req.Role)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LinkUserToAgent はユーザーとエージェントのリンクを作成する。
// POST /api/admin/users/:id/agents/:agentID
func (h *AdminHandler) LinkUserToAgent(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	userID := chi.URLParam(r, "id")
	agentID := chi.URLParam(r, "agentID")

	if err := h.console.LinkUserToAgent(r.Context(), actorID, userID, agentID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// UnlinkUserFromAgent はユーザーとエージェントのリンクを削除する。
// DELETE /api/admin/users/:id/agents/:agentID
func (h *AdminHandler) UnlinkUserFromAgent(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	userID := chi.URLParam(r, "id")
	agentID := chi.URLParam(r, "agentID")

	if err := h.console.UnlinkUserFromAgent(r.Context(), actorID, userID, agentID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetNewsFeed はエージェントのニュースフィードURLを検出して設定する。
// POST /api/admin/agents/:id/news-feed
func (h *AdminHandler) SetNewsFeed(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	agentID := chi.URLParam(r, "id")

	var req setNewsFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	feedURL, err := h.console.SetNewsFeed(r.Context(), actorID, agentID, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"feed_url": feedURL})
}
