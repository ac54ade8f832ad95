// Package directory はツアーエージェントの公開閲覧機能を提供する。
package directory

import (
	"context"
	"fmt"

	"github.com/Ultra-rd/Turkistn/internal/model"
	"github.com/Ultra-rd/Turkistn/internal/repository"
)

// AgentDetail はエージェント詳細ページに必要な情報をひとつに束ねたビュー。
type AgentDetail struct {
	Agent  *model.TourAgent
	Photos []*model.TourAgentPhoto
	Posts  []*model.TourAgentPost
	Tours  []*model.Tour
}

// Service はディレクトリ閲覧のサービス層。
// 認証不要の読み取り専用APIで、全エージェントの掲載情報を公開する。
type Service struct {
	agentRepo repository.TourAgentRepository
	photoRepo repository.PhotoRepository
	postRepo  repository.PostRepository
	tourRepo  repository.TourRepository
}

// NewService はServiceを生成する。
func NewService(
	agentRepo repository.TourAgentRepository,
	photoRepo repository.PhotoRepository,
	postRepo repository.PostRepository,
	tourRepo repository.TourRepository,
) *Service {
	return &Service{
		agentRepo: agentRepo,
		photoRepo: photoRepo,
		postRepo:  postRepo,
		tourRepo:  tourRepo,
	}
}

// ListAgents は全エージェントを作成日時の降順で返す。
// limitが1以上の場合は先頭limit件に制限する。0以下は全件。
func (s *Service) ListAgents(ctx context.Context, limit int) ([]*model.TourAgent, error) {
	agents, err := s.agentRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("エージェント一覧の取得に失敗しました: %w", err)
	}
	return agents, nil
}

// GetAgentDetail はエージェントと掲載コンテンツ（写真・投稿・ツアー）を取得して組み立てる。
// エージェントが存在しない場合はAgentNotFoundエラーを返し、部分的なビューは返さない。
func (s *Service) GetAgentDetail(ctx context.Context, agentID string) (*AgentDetail, error) {
	agent, err := s.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("エージェントの取得に失敗しました: %w", err)
	}
	if agent == nil {
		return nil, model.NewAgentNotFoundError(agentID)
	}

	photos, err := s.photoRepo.ListByAgentID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("写真一覧の取得に失敗しました: %w", err)
	}

	posts, err := s.postRepo.ListByAgentID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}

	tours, err := s.tourRepo.ListByAgentID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("ツアー一覧の取得に失敗しました: %w", err)
	}

	return &AgentDetail{
		Agent:  agent,
		Photos: photos,
		Posts:  posts,
		Tours:  tours,
	}, nil
}
