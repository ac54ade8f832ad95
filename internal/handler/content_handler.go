package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Ultra-rd/Turkistn/internal/agentcontent"
	"github.com/Ultra-rd/Turkistn/internal/middleware"
	"github.com/Ultra-rd/Turkistn/internal/model"
	"github.com/go-chi/chi/v5"
)

// ContentManagerInterface はコンテンツハンドラーが必要とするサービスインターフェース。
// 各ミューテーションは操作主体のユーザーIDを明示的に受け取り、
// 成功時には更新後のコレクション全体を返す。
type ContentManagerInterface interface {
	CreatePost(ctx context.Context, actorID, agentID string, in agentcontent.PostInput) ([]*model.TourAgentPost, error)
	UpdatePost(ctx context.Context, actorID, postID string, in agentcontent.PostInput) ([]*model.TourAgentPost, error)
	DeletePost(ctx context.Context, actorID, postID string) ([]*model.TourAgentPost, error)
	CreatePhoto(ctx context.Context, actorID, agentID string, in agentcontent.PhotoInput) ([]*model.TourAgentPhoto, error)
	DeletePhoto(ctx context.Context, actorID, photoID string) ([]*model.TourAgentPhoto, error)
}

// ContentHandler はエージェント投稿・写真管理のHTTPハンドラー。
type ContentHandler struct {
	manager ContentManagerInterface
}

// NewContentHandler はContentHandlerを生成する。
func NewContentHandler(manager ContentManagerInterface) *ContentHandler {
	return &ContentHandler{
		manager: manager,
	}
}

// postRequest は投稿の作成・更新リクエストのボディ。
type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// photoRequest は写真の作成リクエストのボディ。
type photoRequest struct {
	Photo   string `json:"photo"`
	Caption string `json:"caption"`
}

// CreatePost はエージェントの投稿を作成する。
// POST /api/agents/:id/posts
func (h *ContentHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	agentID := chi.URLParam(r, "id")

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	posts, err := h.manager.CreatePost(r.Context(), actorID, agentID, agentcontent.PostInput{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPostResponses(posts))
}

// UpdatePost はエージェントの投稿を更新する。
// PUT /api/agents/:id/posts/:postID
func (h *ContentHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	postID := chi.URLParam(r, "postID")

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	posts, err := h.manager.UpdatePost(r.Context(), actorID, postID, agentcontent.PostInput{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPostResponses(posts))
}

// DeletePost はエージェントの投稿を削除する。
// DELETE /api/agents/:id/posts/:postID
func (h *ContentHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	postID := chi.URLParam(r, "postID")

	posts, err := h.manager.DeletePost(r.Context(), actorID, postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPostResponses(posts))
}

// CreatePhoto はエージェントのギャラリー写真を追加する。
// POST /api/agents/:id/photos
func (h *ContentHandler) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	agentID := chi.URLParam(r, "id")

	var req photoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	photos, err := h.manager.CreatePhoto(r.Context(), actorID, agentID, agentcontent.PhotoInput{
		Photo:   req.Photo,
		Caption: req.Caption,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPhotoResponses(photos))
}

// DeletePhoto はエージェントのギャラリー写真を削除する。
// DELETE /api/agents/:id/photos/:photoID
func (h *ContentHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	photoID := chi.URLParam(r, "photoID")

	photos, err := h.manager.DeletePhoto(r.Context(), actorID, photoID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPhotoResponses(photos))
}
