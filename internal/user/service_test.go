package user

import (
	"context"
	"errors"
	"testing"

	"github.com/Ultra-rd/Turkistn/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.User, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) { return nil, nil }
func (m *mockUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	return nil
}
func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role model.Role) error {
	return nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	return m.deleteByIDFn(ctx, id)
}

type mockSessionRepo struct {
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	return nil
}
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	return nil
}
func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return m.deleteByUserIDFn(ctx, userID)
}
func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockLinkDeleter struct {
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockLinkDeleter) DeleteByUserID(ctx context.Context, userID string) error {
	return m.deleteByUserIDFn(ctx, userID)
}

// --- テスト ---

// TestService_Profile は自身のプロフィールが取得できることを検証する。
func TestService_Profile(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "agent@example.com", Role: model.RoleTourAgent}, nil
		},
	}

	svc := NewService(userRepo, nil, nil)

	user, err := svc.Profile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if user.ID != "user-1" || user.Role != model.RoleTourAgent {
		t.Errorf("user = %+v, want ID=user-1 Role=tour_agent", user)
	}
}

// TestService_Profile_NotFound は存在しないユーザーがUSER_NOT_FOUNDになることを検証する。
func TestService_Profile_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, nil, nil)

	_, err := svc.Profile(context.Background(), "nonexistent-user")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("err = %v, want USER_NOT_FOUND", err)
	}
}

// TestService_Withdraw は退会処理が全関連データを削除することを検証する。
func TestService_Withdraw(t *testing.T) {
	userDeleteCalled := false
	sessionDeleteCalled := false
	linkDeleteCalled := false

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "test@example.com"}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			userDeleteCalled = true
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{
		deleteByUserIDFn: func(ctx context.Context, userID string) error {
			sessionDeleteCalled = true
			return nil
		},
	}
	linkDeleter := &mockLinkDeleter{
		deleteByUserIDFn: func(ctx context.Context, userID string) error {
			linkDeleteCalled = true
			return nil
		},
	}

	svc := NewService(userRepo, sessionRepo, linkDeleter)

	err := svc.Withdraw(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}
	if !linkDeleteCalled {
		t.Error("expected user_tour_agents DeleteByUserID to be called")
	}
	if !sessionDeleteCalled {
		t.Error("expected sessions DeleteByUserID to be called")
	}
	if !userDeleteCalled {
		t.Error("expected user DeleteByID to be called")
	}
}

// TestService_Withdraw_UserNotFound は存在しないユーザーの退会がエラーになることを検証する。
func TestService_Withdraw_UserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}

	svc := NewService(userRepo, nil, nil)

	err := svc.Withdraw(context.Background(), "nonexistent-user")
	if err == nil {
		t.Fatal("expected error for nonexistent user, got nil")
	}
}

// TestService_Withdraw_LinkDeleteFails はリンク削除失敗時にユーザー削除まで進まないことを検証する。
func TestService_Withdraw_LinkDeleteFails(t *testing.T) {
	userDeleteCalled := false

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			userDeleteCalled = true
			return nil
		},
	}
	linkDeleter := &mockLinkDeleter{
		deleteByUserIDFn: func(ctx context.Context, userID string) error {
			return errors.New("connection refused")
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, linkDeleter)

	if err := svc.Withdraw(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error when link deletion fails")
	}
	if userDeleteCalled {
		t.Error("user must not be deleted when link deletion fails")
	}
}
