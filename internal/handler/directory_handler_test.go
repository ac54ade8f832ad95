package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ultra-rd/Turkistn/internal/directory"
	"github.com/Ultra-rd/Turkistn/internal/model"
	"github.com/go-chi/chi/v5"
)

// --- モック定義 ---

type mockDirectoryService struct {
	listAgentsFn     func(ctx context.Context, limit int) ([]*model.TourAgent, error)
	getAgentDetailFn func(ctx context.Context, agentID string) (*directory.AgentDetail, error)
}

func (m *mockDirectoryService) ListAgents(ctx context.Context, limit int) ([]*model.TourAgent, error) {
	if m.listAgentsFn != nil {
		return m.listAgentsFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockDirectoryService) GetAgentDetail(ctx context.Context, agentID string) (*directory.AgentDetail, error) {
	if m.getAgentDetailFn != nil {
		return m.getAgentDetailFn(ctx, agentID)
	}
	return nil, nil
}

// newDirectoryRouter はディレクトリハンドラーをマウントしたテスト用ルーターを返す。
func newDirectoryRouter(svc DirectoryServiceInterface) http.Handler {
	r := chi.NewRouter()
	h := NewDirectoryHandler(svc)
	r.Get("/api/agents", h.ListAgents)
	r.Get("/api/agents/{id}", h.GetAgent)
	return r
}

func sampleAgent(id string) *model.TourAgent {
	return &model.TourAgent{
		ID:        id,
		Name:      "Шелковый путь трэвел",
		Logo:      "https://example.com/logo.png",
		Website:   "https://example.com",
		CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

// --- GET /api/agents テスト ---

func TestDirectoryHandler_ListAgents_ReturnsAgents(t *testing.T) {
	svc := &mockDirectoryService{
		listAgentsFn: func(ctx context.Context, limit int) ([]*model.TourAgent, error) {
			return []*model.TourAgent{sampleAgent("agent-1"), sampleAgent("agent-2")}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	w := httptest.NewRecorder()
	newDirectoryRouter(svc).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body) != 2 {
		t.Errorf("agents = %d, want 2", len(body))
	}
	if body[0]["id"] != "agent-1" {
		t.Errorf("body[0].id = %v, want agent-1", body[0]["id"])
	}
}

func TestDirectoryHandler_ListAgents_PassesLimitParam(t *testing.T) {
	var gotLimit int
	svc := &mockDirectoryService{
		listAgentsFn: func(ctx context.Context, limit int) ([]*model.TourAgent, error) {
			gotLimit = limit
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/agents?limit=4", nil)
	w := httptest.NewRecorder()
	newDirectoryRouter(svc).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotLimit != 4 {
		t.Errorf("limit = %d, want 4", gotLimit)
	}
}

func TestDirectoryHandler_ListAgents_InvalidLimit_Returns400(t *testing.T) {
	svc := &mockDirectoryService{
		listAgentsFn: func(ctx context.Context, limit int) ([]*model.TourAgent, error) {
			t.Fatal("service should not be called for invalid limit")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/agents?limit=abc", nil)
	w := httptest.NewRecorder()
	newDirectoryRouter(svc).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestDirectoryHandler_ListAgents_EmptyResult_ReturnsEmptyArray(t *testing.T) {
	svc := &mockDirectoryService{}

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	w := httptest.NewRecorder()
	newDirectoryRouter(svc).ServeHTTP(w, req)

	// nilスライスでも空配列としてエンコードされること
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", got)
	}
}

func TestDirectoryHandler_ListAgents_ServiceError_Returns500(t *testing.T) {
	svc := &mockDirectoryService{
		listAgentsFn: func(ctx context.Context, limit int) ([]*model.TourAgent, error) {
			return nil, errors.New("db connection failed")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	w := httptest.NewRecorder()
	newDirectoryRouter(svc).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}

// --- GET /api/agents/:id テスト ---

func TestDirectoryHandler_GetAgent_ReturnsDetail(t *testing.T) {
	svc := &mockDirectoryService{
		getAgentDetailFn: func(ctx context.Context, agentID string) (*directory.AgentDetail, error) {
			return &directory.AgentDetail{
				Agent: sampleAgent(agentID),
				Photos: []*model.TourAgentPhoto{
					{ID: "photo-1", TourAgentID: agentID, Photo: "https://example.com/p1.jpg"},
				},
				Posts: []*model.TourAgentPost{
					{ID: "post-1", TourAgentID: agentID, Title: "Новости"},
				},
				Tours: []*model.Tour{
					{ID: "tour-1", TourAgentID: agentID, Title: "Туркестан за 3 дня", Featured: true},
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/agents/agent-detail", nil)
	w := httptest.NewRecorder()
	newDirectoryRouter(svc).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Agent  map[string]interface{}   `json:"agent"`
		Photos []map[string]interface{} `json:"photos"`
		Posts  []map[string]interface{} `json:"posts"`
		Tours  []map[string]interface{} `json:"tours"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Agent["id"] != "agent-detail" {
		t.Errorf("agent.id = %v, want agent-detail", body.Agent["id"])
	}
	if len(body.Photos) != 1 || len(body.Posts) != 1 || len(body.Tours) != 1 {
		t.Errorf("photos/posts/tours = %d/%d/%d, want 1/1/1",
			len(body.Photos), len(body.Posts), len(body.Tours))
	}
}

func TestDirectoryHandler_GetAgent_NotFound_Returns404(t *testing.T) {
	svc := &mockDirectoryService{
		getAgentDetailFn: func(ctx context.Context, agentID string) (*directory.AgentDetail, error) {
			return nil, model.NewAgentNotFoundError(agentID)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/agents/no-such-agent", nil)
	w := httptest.NewRecorder()
	newDirectoryRouter(svc).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["code"] != model.ErrCodeAgentNotFound {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeAgentNotFound)
	}
}
