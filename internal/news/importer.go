package news

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ultra-rd/Turkistn/internal/model"
	"github.com/Ultra-rd/Turkistn/internal/repository"
	"github.com/Ultra-rd/Turkistn/internal/security"
)

// Importer はフィードから取得した記事のエージェント投稿への取り込みを提供する。
// source_guidによる同一性判定で、重複登録を防ぎつつ既存投稿の上書き更新を行う。
type Importer struct {
	postRepo  repository.PostRepository
	sanitizer security.ContentSanitizerService
}

// NewImporter はImporterの新しいインスタンスを生成する。
func NewImporter(
	postRepo repository.PostRepository,
	sanitizer security.ContentSanitizerService,
) *Importer {
	return &Importer{
		postRepo:  postRepo,
		sanitizer: sanitizer,
	}
}

// ImportItems はフィードから取得した記事をエージェントの投稿として取り込む。
// 同一性判定キー（source_guid）の決定:
//  1. 記事のGUID - 最優先
//  2. 記事のリンクURL - 第2優先
//  3. hash(title + published) - 第3優先
//
// タイトルが空の記事はスキップする。手動投稿（source_guidなし）には触れない。
// 戻り値は挿入数、更新数、エラー。
func (s *Importer) ImportItems(
	ctx context.Context,
	agentID string,
	items []model.ParsedNewsItem,
) (inserted int, updated int, err error) {
	if len(items) == 0 {
		return 0, 0, nil
	}

	now := time.Now()

	for _, parsed := range items {
		if strings.TrimSpace(parsed.Title) == "" {
			continue
		}

		guid := sourceGUID(parsed)
		sanitizedContent := s.sanitizer.Sanitize(parsed.Content)

		existing, findErr := s.postRepo.FindByAgentAndGUID(ctx, agentID, guid)
		if findErr != nil {
			slog.Error("記事の同一性判定でエラー",
				"agent_id", agentID,
				"source_guid", guid,
				"error", findErr,
			)
			return inserted, updated, fmt.Errorf("記事の同一性判定に失敗: %w", findErr)
		}

		if existing != nil {
			// 既存投稿を上書き更新。履歴は保持しない。
			existing.Title = strings.TrimSpace(parsed.Title)
			existing.Content = sanitizedContent
			existing.Image = parsed.Image
			existing.UpdatedAt = now

			if updateErr := s.postRepo.Update(ctx, existing); updateErr != nil {
				slog.Error("記事の更新でエラー",
					"agent_id", agentID,
					"post_id", existing.ID,
					"error", updateErr,
				)
				return inserted, updated, fmt.Errorf("記事の更新に失敗: %w", updateErr)
			}
			updated++
		} else {
			createdAt := now
			if parsed.PublishedAt != nil {
				createdAt = *parsed.PublishedAt
			}
			post := &model.TourAgentPost{
				ID:          uuid.New().String(),
				TourAgentID: agentID,
				Title:       strings.TrimSpace(parsed.Title),
				Content:     sanitizedContent,
				Image:       parsed.Image,
				SourceGUID:  guid,
				CreatedAt:   createdAt,
				UpdatedAt:   now,
			}

			if createErr := s.postRepo.Create(ctx, post); createErr != nil {
				slog.Error("記事の挿入でエラー",
					"agent_id", agentID,
					"source_guid", guid,
					"error", createErr,
				)
				return inserted, updated, fmt.Errorf("記事の挿入に失敗: %w", createErr)
			}
			inserted++
		}
	}

	slog.Info("記事取り込み完了",
		"agent_id", agentID,
		"inserted", inserted,
		"updated", updated,
	)

	return inserted, updated, nil
}

// sourceGUID は記事の同一性判定キーを決定する。
// 優先順位: GUID > リンクURL > hash(title+published)
func sourceGUID(parsed model.ParsedNewsItem) string {
	if parsed.GUID != "" {
		return parsed.GUID
	}
	if parsed.Link != "" {
		return parsed.Link
	}
	pubStr := ""
	if parsed.PublishedAt != nil {
		pubStr = parsed.PublishedAt.UTC().Format(time.RFC3339)
	}
	data := fmt.Sprintf("%s|%s", parsed.Title, pubStr)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
