// Package admin は管理者専用の管理コンソール機能を提供する。
//
// すべての操作は操作主体のユーザーIDを明示的に受け取り、
// サービス境界でロールが管理者であることを再チェックする。
package admin

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

// RoleResolver はロール解決のインターフェース。
// authz.Resolverを抽象化してテスタビリティを向上させる。
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (model.Role, error)
}

// LogoFinder はエージェント公式サイトからロゴ参照を探すインターフェース。
// 取得失敗時は空文字列を返す（エラーにはしない）。
type LogoFinder interface {
	DiscoverLogo(ctx context.Context, siteURL string) string
}

// FeedDetector はURLからRSS/AtomフィードURLを検出するインターフェース。
type FeedDetector interface {
	Detect(ctx context.Context, rawURL string) (string, error)
}

// AgentInput はエージェントの作成・更新の入力。
// IDが空の場合は作成、指定されている場合は更新となる。
type AgentInput struct {
	ID          string
	Name        string
	Logo        string
	Description string
	Phone       string
	Email       string
	Website     string
}

// Console は管理コンソールのサービス層。
type Console struct {
	resolver   RoleResolver
	userRepo   repository.UserRepository
	agentRepo  repository.TourAgentRepository
	linkRepo   repository.LinkRepository
	logoFinder LogoFinder
	detector   FeedDetector
}

// NewConsole はConsoleを生成する。
// logoFinderとdetectorはnil可（その場合ロゴ探索とフィード検出は行わない）。
func NewConsole(
	resolver RoleResolver,
	userRepo repository.UserRepository,
	agentRepo repository.TourAgentRepository,
	linkRepo repository.LinkRepository,
	logoFinder LogoFinder,
	detector FeedDetector,
) *Console {
	return &Console{
		resolver:   resolver,
		userRepo:   userRepo,
		agentRepo:  agentRepo,
		linkRepo:   linkRepo,
		logoFinder: logoFinder,
		detector:   detector,
	}
}

// requireAdmin は操作主体が管理者であることを確認する。
// ロール解決自体が失敗した場合も権限なしとして扱う（フェイルクローズ）。
func (c *Console) requireAdmin(ctx context.Context, actorID string) error {
	role, err := c.resolver.ResolveRole(ctx, actorID)
	if err != nil {
		slog.Error("role resolution failed, denying admin access",
			slog.String("user_id", actorID),
			slog.String("error", err.Error()),
		)
		return model.NewForbiddenError()
	}
	if role != model.RoleAdmin {
		return model.NewForbiddenError()
	}
	return nil
}

// UpsertAgent はエージェントを作成または更新して返す。
// 名前とロゴ参照は必須。ロゴが空でWebサイトが指定されている場合は
// サイトからのロゴ探索を試みる（ベストエフォート）。
func (c *Console) UpsertAgent(ctx context.Context, actorID string, in AgentInput) (*model.TourAgent, error) {
	if err := c.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Name) == "" {
		return nil, model.NewMissingFieldError("name")
	}

	logo := strings.TrimSpace(in.Logo)
	if logo == "" && c.logoFinder != nil && strings.TrimSpace(in.Website) != "" {
		logo = c.logoFinder.DiscoverLogo(ctx, in.Website)
	}
	if logo == "" {
		return nil, model.NewMissingFieldError("logo")
	}

	if in.ID == "" {
		now := time.Now()
		agent := &model.TourAgent{
			ID:          uuid.New().String(),
			Name:        strings.TrimSpace(in.Name),
			Logo:        logo,
			Description: in.Description,
			Phone:       in.Phone,
			Email:       in.Email,
			Website:     in.Website,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := c.agentRepo.Create(ctx, agent); err != nil {
			return nil, fmt.Errorf("エージェントの作成に失敗しました: %w", err)
		}
		slog.Info("tour agent created",
			slog.String("agent_id", agent.ID),
			slog.String("user_id", actorID),
		)
		return agent, nil
	}

	agent, err := c.agentRepo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("エージェントの取得に失敗しました: %w", err)
	}
	if agent == nil {
		return nil, model.NewAgentNotFoundError(in.ID)
	}

	agent.Name = strings.TrimSpace(in.Name)
	agent.Logo = logo
	agent.Description = in.Description
	agent.Phone = in.Phone
	agent.Email = in.Email
	agent.Website = in.Website

	if err := c.agentRepo.Update(ctx, agent); err != nil {
		return nil, fmt.Errorf("エージェントの更新に失敗しました: %w", err)
	}

	slog.Info("tour agent updated",
		slog.String("agent_id", agent.ID),
		slog.String("user_id", actorID),
	)

	// 更新後の状態を再取得して返す
	updated, err := c.agentRepo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("エージェントの再取得に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewAgentNotFoundError(in.ID)
	}
	return updated, nil
}

// DeleteAgent はエージェントのマスターレコードを削除する。
// 投稿・写真・ツアー・リンクはDBのCASCADE制約で同時に削除される。
func (c *Console) DeleteAgent(ctx context.Context, actorID, agentID string) error {
	if err := c.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	agent, err := c.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return fmt.Errorf("エージェントの取得に失敗しました: %w", err)
	}
	if agent == nil {
		return model.NewAgentNotFoundError(agentID)
	}

	if err := c.agentRepo.DeleteByID(ctx, agentID); err != nil {
		return fmt.Errorf("エージェントの削除に失敗しました: %w", err)
	}

	slog.Info("tour agent deleted",
		slog.String("agent_id", agentID),
		slog.String("user_id", actorID),
	)
	return nil
}

// SetUserRole は指定ユーザーのロールを変更する。
// 管理者が自分自身を管理者以外に変更することはできない
// （最後の管理者が誤ってロックアウトされる事故を防ぐ）。
func (c *Console) SetUserRole(ctx context.Context, actorID, userID string, role model.Role) error {
	if err := c.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	if !role.IsValid() {
		return model.NewInvalidRoleError(string(role))
	}

	if actorID == userID && role != model.RoleAdmin {
		return model.NewSelfDemotionError()
	}

	user, err := c.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if err := c.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return fmt.Errorf("ロールの更新に失敗しました: %w", err)
	}

	slog.Info("user role updated",
		slog.String("target_user_id", userID),
		slog.String("role", string(role)),
		slog.String("user_id", actorID),
	)
	return nil
}

// LinkUserToAgent はユーザーとエージェントのリンクを作成する。
// 既存リンクがある場合はDuplicateLinkエラーを返す
// （DBの一意制約の手前で分かりやすいエラーにする）。
func (c *Console) LinkUserToAgent(ctx context.Context, actorID, userID, agentID string) error {
	if err := c.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	user, err := c.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	agent, err := c.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return fmt.Errorf("エージェントの取得に失敗しました: %w", err)
	}
	if agent == nil {
		return model.NewAgentNotFoundError(agentID)
	}

	existing, err := c.linkRepo.FindByUserAndAgent(ctx, userID, agentID)
	if err != nil {
		return fmt.Errorf("既存リンクの確認に失敗しました: %w", err)
	}
	if existing != nil {
		return model.NewDuplicateLinkError()
	}

	link := &model.UserTourAgentLink{
		ID:          uuid.New().String(),
		UserID:      userID,
		TourAgentID: agentID,
		CreatedAt:   time.Now(),
	}
	if err := c.linkRepo.Create(ctx, link); err != nil {
		return fmt.Errorf("リンクの作成に失敗しました: %w", err)
	}

	slog.Info("user linked to tour agent",
		slog.String("target_user_id", userID),
		slog.String("agent_id", agentID),
		slog.String("user_id", actorID),
	)
	return nil
}

// UnlinkUserFromAgent は両フィールドが一致するリンクを削除する。
func (c *Console) UnlinkUserFromAgent(ctx context.Context, actorID, userID, agentID string) error {
	if err := c.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	existing, err := c.linkRepo.FindByUserAndAgent(ctx, userID, agentID)
	if err != nil {
		return fmt.Errorf("リンクの確認に失敗しました: %w", err)
	}
	if existing == nil {
		return model.NewLinkNotFoundError()
	}

	if err := c.linkRepo.DeleteByUserAndAgent(ctx, userID, agentID); err != nil {
		return fmt.Errorf("リンクの削除に失敗しました: %w", err)
	}

	slog.Info("user unlinked from tour agent",
		slog.String("target_user_id", userID),
		slog.String("agent_id", agentID),
		slog.String("user_id", actorID),
	)
	return nil
}

// ListUsers は全ユーザーをリンク済みエージェント付きで返す。
func (c *Console) ListUsers(ctx context.Context, actorID string) ([]*model.UserWithAgents, error) {
	if err := c.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	users, err := c.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	links, err := c.linkRepo.ListAllWithAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("リンク一覧の取得に失敗しました: %w", err)
	}

	agentsByUser := make(map[string][]model.LinkedAgent)
	for _, row := range links {
		agentsByUser[row.UserID] = append(agentsByUser[row.UserID], row.Agent)
	}

	results := make([]*model.UserWithAgents, len(users))
	for i, user := range users {
		results[i] = &model.UserWithAgents{
			User:   *user,
			Agents: agentsByUser[user.ID],
		}
	}
	return results, nil
}

// SetNewsFeed はエージェントのニュースフィードURLを検出して設定する。
// candidateURLが空の場合はエージェントのWebサイトから検出を試みる。
// 検出に成功した場合、確定したフィードURLを返す。
func (c *Console) SetNewsFeed(ctx context.Context, actorID, agentID, candidateURL string) (string, error) {
	if err := c.requireAdmin(ctx, actorID); err != nil {
		return "", err
	}
	if c.detector == nil {
		return "", model.NewFeedNotDetectedError(candidateURL)
	}

	agent, err := c.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return "", fmt.Errorf("エージェントの取得に失敗しました: %w", err)
	}
	if agent == nil {
		return "", model.NewAgentNotFoundError(agentID)
	}

	target := strings.TrimSpace(candidateURL)
	if target == "" {
		target = agent.Website
	}
	if target == "" {
		return "", model.NewMissingFieldError("url")
	}

	feedURL, err := c.detector.Detect(ctx, target)
	if err != nil {
		return "", err
	}

	if err := c.agentRepo.UpdateNewsFeedURL(ctx, agentID, feedURL); err != nil {
		return "", fmt.Errorf("ニュースフィードURLの保存に失敗しました: %w", err)
	}

	slog.Info("news feed configured",
		slog.String("agent_id", agentID),
		slog.String("feed_url", feedURL),
		slog.String("user_id", actorID),
	)
	return feedURL, nil
}
