package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Ultra-rd/Turkistn/internal/directory"
	"github.com/Ultra-rd/Turkistn/internal/model"
	"github.com/go-chi/chi/v5"
)

// DirectoryServiceInterface はディレクトリハンドラーが必要とするサービスインターフェース。
type DirectoryServiceInterface interface {
	// ListAgents は全エージェントを作成日時の降順で返す。
	ListAgents(ctx context.Context, limit int) ([]*model.TourAgent, error)
	// GetAgentDetail はエージェントと掲載コンテンツをまとめて取得する。
	GetAgentDetail(ctx context.Context, agentID string) (*directory.AgentDetail, error)
}

// DirectoryHandler はツアーエージェント公開閲覧のHTTPハンドラー。
// 認証不要の読み取り専用APIを提供する。
type DirectoryHandler struct {
	service DirectoryServiceInterface
}

// NewDirectoryHandler はDirectoryHandlerを生成する。
func NewDirectoryHandler(service DirectoryServiceInterface) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
	}
}

// agentResponse はエージェント情報のAPIレスポンス。
type agentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	NewsFeedURL string `json:"news_feed_url,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// postResponse は投稿のAPIレスポンス。
type postResponse struct {
	ID          string `json:"id"`
	TourAgentID string `json:"tour_agent_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Image       string `json:"image,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// photoResponse は写真のAPIレスポンス。
type photoResponse struct {
	ID          string `json:"id"`
	TourAgentID string `json:"tour_agent_id"`
	Photo       string `json:"photo"`
	Caption     string `json:"caption,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// tourResponse はツアー商品のAPIレスポンス。
type tourResponse struct {
	ID          string `json:"id"`
	TourAgentID string `json:"tour_agent_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	GroupSize   string `json:"group_size"`
	StartDates  string `json:"start_dates"`
	Price       string `json:"price"`
	Image       string `json:"image,omitempty"`
	Featured    bool   `json:"featured"`
}

// agentDetailResponse はエージェント詳細ページのAPIレスポンス。
type agentDetailResponse struct {
	Agent  agentResponse   `json:"agent"`
	Photos []photoResponse `json:"photos"`
	Posts  []postResponse  `json:"posts"`
	Tours  []tourResponse  `json:"tours"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListAgents はエージェント一覧を返す。
// GET /api/agents?limit=N
func (h *DirectoryHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_REQUEST",
				Message:  "limitパラメータが不正です。",
				Category: "validation",
				Action:   "limitには0以上の整数を指定してください。",
			})
			return
		}
		limit = parsed
	}

	agents, err := h.service.ListAgents(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]agentResponse, len(agents))
	for i, agent := range agents {
		responses[i] = toAgentResponse(agent)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// GetAgent はエージェント詳細（写真・投稿・ツアーを含む）を返す。
// GET /api/agents/:id
func (h *DirectoryHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")

	detail, err := h.service.GetAgentDetail(r.Context(), agentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if detail == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewAgentNotFoundError(agentID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAgentDetailResponse(detail))
}

// --- ヘルパー関数 ---

func toAgentResponse(agent *model.TourAgent) agentResponse {
	return agentResponse{
		ID:          agent.ID,
		Name:        agent.Name,
		Logo:        agent.Logo,
		Description: agent.Description,
		Phone:       agent.Phone,
		Email:       agent.Email,
		Website:     agent.Website,
		NewsFeedURL: agent.NewsFeedURL,
		CreatedAt:   agent.CreatedAt.Format(time.RFC3339),
	}
}

func toPostResponses(posts []*model.TourAgentPost) []postResponse {
	responses := make([]postResponse, len(posts))
	for i, post := range posts {
		responses[i] = postResponse{
			ID:          post.ID,
			TourAgentID: post.TourAgentID,
			Title:       post.Title,
			Content:     post.Content,
			Image:       post.Image,
			CreatedAt:   post.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   post.UpdatedAt.Format(time.RFC3339),
		}
	}
	return responses
}

func toPhotoResponses(photos []*model.TourAgentPhoto) []photoResponse {
	responses := make([]photoResponse, len(photos))
	for i, photo := range photos {
		responses[i] = photoResponse{
			ID:          photo.ID,
			TourAgentID: photo.TourAgentID,
			Photo:       photo.Photo,
			Caption:     photo.Caption,
			CreatedAt:   photo.CreatedAt.Format(time.RFC3339),
		}
	}
	return responses
}

func toTourResponses(tours []*model.Tour) []tourResponse {
	responses := make([]tourResponse, len(tours))
	for i, tour := range tours {
		responses[i] = tourResponse{
			ID:          tour.ID,
			TourAgentID: tour.TourAgentID,
			Title:       tour.Title,
			Description: tour.Description,
			Duration:    tour.Duration,
			GroupSize:   tour.GroupSize,
			StartDates:  tour.StartDates,
			Price:       tour.Price,
			Image:       tour.Image,
			Featured:    tour.Featured,
		}
	}
	return responses
}

func toAgentDetailResponse(detail *directory.AgentDetail) agentDetailResponse {
	return agentDetailResponse{
		Agent:  toAgentResponse(detail.Agent),
		Photos: toPhotoResponses(detail.Photos),
		Posts:  toPostResponses(detail.Posts),
		Tours:  toTourResponses(detail.Tours),
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeMissingField, model.ErrCodeInvalidRole, model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeSelfDemotion, model.ErrCodeDuplicateLink:
		return http.StatusConflict
	case model.ErrCodeAgentNotFound, model.ErrCodePostNotFound, model.ErrCodePhotoNotFound,
		model.ErrCodeUserNotFound, model.ErrCodeLinkNotFound:
		return http.StatusNotFound
	case model.ErrCodeFeedNotDetected:
		return http.StatusUnprocessableEntity
	case model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
