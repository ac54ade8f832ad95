package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ultra-rd/Turkistn/internal/middleware"
	"github.com/Ultra-rd/Turkistn/internal/model"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	profileFn  func(ctx context.Context, userID string) (*model.User, error)
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if m.profileFn != nil {
		return m.profileFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// authedRequest は認証済みユーザーIDをコンテキストに積んだリクエストを生成する。
func authedRequest(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

// --- GET /api/users/me テスト ---

func TestUserHandler_Profile_ReturnsUserJSON(t *testing.T) {
	svc := &mockUserService{
		profileFn: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{
				ID:        userID,
				Email:     "traveler@example.com",
				FullName:  "Асел Нурланова",
				Role:      model.RoleTourAgent,
				CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	h := NewUserHandler(svc)

	req := authedRequest(http.MethodGet, "/api/users/me", "user-profile")
	w := httptest.NewRecorder()

	h.Profile(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["id"] != "user-profile" {
		t.Errorf("id = %v, want user-profile", body["id"])
	}
	if body["role"] != "tour_agent" {
		t.Errorf("role = %v, want tour_agent", body["role"])
	}
}

func TestUserHandler_Profile_NotFound_Returns404(t *testing.T) {
	svc := &mockUserService{
		profileFn: func(ctx context.Context, userID string) (*model.User, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	h := NewUserHandler(svc)

	req := authedRequest(http.MethodGet, "/api/users/me", "user-missing")
	w := httptest.NewRecorder()

	h.Profile(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestUserHandler_Profile_NoAuth_Returns401(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	w := httptest.NewRecorder()

	h.Profile(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// --- DELETE /api/users/me テスト ---

func TestUserHandler_Withdraw_Success(t *testing.T) {
	withdrawCalled := false
	var gotUserID string

	svc := &mockUserService{
		withdrawFn: func(ctx context.Context, userID string) error {
			withdrawCalled = true
			gotUserID = userID
			return nil
		},
	}
	h := NewUserHandler(svc)

	req := authedRequest(http.MethodDelete, "/api/users/me", "user-withdraw")
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
	if !withdrawCalled {
		t.Error("Withdraw should be called")
	}
	if gotUserID != "user-withdraw" {
		t.Errorf("userID = %q, want %q", gotUserID, "user-withdraw")
	}
}

func TestUserHandler_Withdraw_NoAuth_Returns401(t *testing.T) {
	svc := &mockUserService{
		withdrawFn: func(ctx context.Context, userID string) error {
			t.Fatal("Withdraw should not be called without authentication")
			return nil
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestUserHandler_Withdraw_ServiceError_Returns500(t *testing.T) {
	svc := &mockUserService{
		withdrawFn: func(ctx context.Context, userID string) error {
			return errors.New("db connection failed")
		},
	}
	h := NewUserHandler(svc)

	req := authedRequest(http.MethodDelete, "/api/users/me", "user-err")
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}
