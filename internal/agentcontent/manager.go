// Package agentcontent はツアーエージェントの投稿・写真の管理機能を提供する。
//
// すべてのミューテーションは操作主体のユーザーIDを明示的に受け取り、
// サービス境界で管理権限を再チェックする。UI側の出し分けはセキュリティ境界ではない。
package agentcontent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Ultra-rd/Turkistn/internal/model"
	"github.com/Ultra-rd/Turkistn/internal/repository"
	"github.com/google/uuid"
)

// AuthorizationChecker は管理権限判定のインターフェース。
// authz.Resolverを抽象化してテスタビリティを向上させる。
type AuthorizationChecker interface {
	CanManage(ctx context.Context, userID, agentID string) (bool, error)
}

// Sanitizer は投稿本文HTMLのサニタイズのインターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// PostInput は投稿の作成・更新の入力。
type PostInput struct {
	Title   string
	Content string
	Image   string
}

// PhotoInput は写真の作成の入力。
type PhotoInput struct {
	Photo   string
	Caption string
}

// Manager は投稿・写真管理のサービス層。
// ミューテーション成功後は対象コレクションを再取得して返し、
// 呼び出し側が一貫したミューテーション後ビューを観測できるようにする。
type Manager struct {
	authz     AuthorizationChecker
	postRepo  repository.PostRepository
	photoRepo repository.PhotoRepository
	sanitizer Sanitizer
}

// NewManager はManagerを生成する。
func NewManager(
	authz AuthorizationChecker,
	postRepo repository.PostRepository,
	photoRepo repository.PhotoRepository,
	sanitizer Sanitizer,
) *Manager {
	return &Manager{
		authz:     authz,
		postRepo:  postRepo,
		photoRepo: photoRepo,
		sanitizer: sanitizer,
	}
}

// authorize は操作主体が指定エージェントを管理できるかを確認する。
// 権限判定自体が失敗した場合も権限なしとして扱う（フェイルクローズ）。
func (m *Manager) authorize(ctx context.Context, actorID, agentID string) error {
	ok, err := m.authz.CanManage(ctx, actorID, agentID)
	if err != nil {
		slog.Error("authorization check failed, denying access",
			slog.String("user_id", actorID),
			slog.String("agent_id", agentID),
			slog.String("error", err.Error()),
		)
		return model.NewForbiddenError()
	}
	if !ok {
		return model.NewForbiddenError()
	}
	return nil
}

// ListPosts はエージェントの投稿一覧を作成日時の降順で返す。
func (m *Manager) ListPosts(ctx context.Context, agentID string) ([]*model.TourAgentPost, error) {
	posts, err := m.postRepo.ListByAgentID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// ListPhotos はエージェントの写真一覧を作成日時の降順で返す。
func (m *Manager) ListPhotos(ctx context.Context, agentID string) ([]*model.TourAgentPhoto, error) {
	photos, err := m.photoRepo.ListByAgentID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("写真一覧の取得に失敗しました: %w", err)
	}
	return photos, nil
}

// CreatePost は投稿を作成し、更新後の投稿一覧を返す。
// タイトルまたは本文が空の場合はストアに書き込む前にValidationErrorで失敗する。
func (m *Manager) CreatePost(ctx context.Context, actorID, agentID string, in PostInput) ([]*model.TourAgentPost, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, model.NewMissingFieldError("title")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, model.NewMissingFieldError("content")
	}

	if err := m.authorize(ctx, actorID, agentID); err != nil {
		return nil, err
	}

	now := time.Now()
	post := &model.TourAgentPost{
		ID:          uuid.New().String(),
		TourAgentID: agentID,
		Title:       strings.TrimSpace(in.Title),
		Content:     m.sanitizer.Sanitize(in.Content),
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("agent_id", agentID),
		slog.String("user_id", actorID),
	)

	return m.ListPosts(ctx, agentID)
}

// UpdatePost は投稿を更新し、更新後の投稿一覧を返す。
// 作成時と同じバリデーションを行い、updated_atを更新する。
func (m *Manager) UpdatePost(ctx context.Context, actorID, postID string, in PostInput) ([]*model.TourAgentPost, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, model.NewMissingFieldError("title")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, model.NewMissingFieldError("content")
	}

	post, err := m.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	if err := m.authorize(ctx, actorID, post.TourAgentID); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = m.sanitizer.Sanitize(in.Content)
	post.Image = in.Image

	if err := m.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("投稿の更新に失敗しました: %w", err)
	}

	slog.Info("post updated",
		slog.String("post_id", postID),
		slog.String("agent_id", post.TourAgentID),
		slog.String("user_id", actorID),
	)

	return m.ListPosts(ctx, post.TourAgentID)
}

// DeletePost は投稿をIDで削除し、更新後の投稿一覧を返す。
// 削除意思の確認は呼び出し側の責務で、ここでは無条件に削除する。
func (m *Manager) DeletePost(ctx context.Context, actorID, postID string) ([]*model.TourAgentPost, error) {
	post, err := m.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	if err := m.authorize(ctx, actorID, post.TourAgentID); err != nil {
		return nil, err
	}

	if err := m.postRepo.DeleteByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("投稿の削除に失敗しました: %w", err)
	}

	slog.Info("post deleted",
		slog.String("post_id", postID),
		slog.String("agent_id", post.TourAgentID),
		slog.String("user_id", actorID),
	)

	return m.ListPosts(ctx, post.TourAgentID)
}

// CreatePhoto は写真を作成し、更新後の写真一覧を返す。
// 写真参照が空の場合はストアに書き込む前にValidationErrorで失敗する。
func (m *Manager) CreatePhoto(ctx context.Context, actorID, agentID string, in PhotoInput) ([]*model.TourAgentPhoto, error) {
	if strings.TrimSpace(in.Photo) == "" {
		return nil, model.NewMissingFieldError("photo")
	}

	if err := m.authorize(ctx, actorID, agentID); err != nil {
		return nil, err
	}

	photo := &model.TourAgentPhoto{
		ID:          uuid.New().String(),
		TourAgentID: agentID,
		Photo:       strings.TrimSpace(in.Photo),
		Caption:     in.Caption,
		CreatedAt:   time.Now(),
	}

	if err := m.photoRepo.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("写真の作成に失敗しました: %w", err)
	}

	slog.Info("photo created",
		slog.String("photo_id", photo.ID),
		slog.String("agent_id", agentID),
		slog.String("user_id", actorID),
	)

	return m.ListPhotos(ctx, agentID)
}

// DeletePhoto は写真をIDで削除し、更新後の写真一覧を返す。
func (m *Manager) DeletePhoto(ctx context.Context, actorID, photoID string) ([]*model.TourAgentPhoto, error) {
	photo, err := m.photoRepo.FindByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("写真の取得に失敗しました: %w", err)
	}
	if photo == nil {
		return nil, model.NewPhotoNotFoundError(photoID)
	}

	if err := m.authorize(ctx, actorID, photo.TourAgentID); err != nil {
		return nil, err
	}

	if err := m.photoRepo.DeleteByID(ctx, photoID); err != nil {
		return nil, fmt.Errorf("写真の削除に失敗しました: %w", err)
	}

	slog.Info("photo deleted",
		slog.String("photo_id", photoID),
		slog.String("agent_id", photo.TourAgentID),
		slog.String("user_id", actorID),
	)

	return m.ListPhotos(ctx, photo.TourAgentID)
}
