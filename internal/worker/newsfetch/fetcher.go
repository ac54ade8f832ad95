// Package newsfetch はエージェントニュースのバックグラウンド取得処理を提供する。
// スケジューラとフェッチャーを含む。
package newsfetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Ultra-rd/Turkistn/internal/metrics"
	"github.com/Ultra-rd/Turkistn/internal/model"
)

// userAgent は外部サイトへのアクセスで使用するUser-Agentヘッダー。
const userAgent = "Turkistn/1.0 Tourism Portal"

// NewsImporter は取得した記事の投稿への取り込みインターフェース。
type NewsImporter interface {
	ImportItems(ctx context.Context, agentID string, items []model.ParsedNewsItem) (int, int, error)
}

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// Fetcher は個別エージェントのニュースフィードのHTTPフェッチとパースを行う。
// SSRF検証、gofeedによるパース、Importerによる投稿保存を実行する。
type Fetcher struct {
	importer    NewsImporter
	ssrfGuard   SSRFValidator
	logger      *slog.Logger
	metrics     metrics.MetricsCollector // nil可
	timeout     time.Duration
	maxBodySize int64
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
// collectorはnil可（その場合メトリクスは記録しない）。
func NewFetcher(
	importer NewsImporter,
	ssrfGuard SSRFValidator,
	logger *slog.Logger,
	collector metrics.MetricsCollector,
	timeout time.Duration,
	maxBodySize int64,
) *Fetcher {
	return &Fetcher{
		importer:    importer,
		ssrfGuard:   ssrfGuard,
		logger:      logger,
		metrics:     collector,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// Fetch はエージェントのニュースフィードをフェッチし、記事を投稿として取り込む。
// AgentNewsFetcherServiceインターフェースを実装する。
func (f *Fetcher) Fetch(ctx context.Context, agent *model.TourAgent) error {
	start := time.Now()

	if agent.NewsFeedURL == "" {
		return nil
	}

	// SSRF検証
	if err := f.ssrfGuard.ValidateURL(agent.NewsFeedURL); err != nil {
		f.logger.Error("SSRF検証に失敗しました",
			slog.String("agent_id", agent.ID),
			slog.String("feed_url", agent.NewsFeedURL),
			slog.String("error", err.Error()),
		)
		f.recordFailure(agent.ID, "ssrf_blocked")
		return fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	// HTTPリクエスト構築
	client := f.ssrfGuard.NewSafeClient(f.timeout, f.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, agent.NewsFeedURL, nil)
	if err != nil {
		return fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	// HTTPリクエスト実行
	resp, err := client.Do(req)
	if err != nil {
		f.logger.Error("HTTPリクエストに失敗しました",
			slog.String("agent_id", agent.ID),
			slog.String("feed_url", agent.NewsFeedURL),
			slog.String("error", err.Error()),
		)
		f.recordFailure(agent.ID, "http_error")
		return fmt.Errorf("HTTPリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	if f.metrics != nil {
		f.metrics.RecordHTTPStatus(resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("ニュースフィードのHTTPステータス異常",
			slog.String("agent_id", agent.ID),
			slog.String("feed_url", agent.NewsFeedURL),
			slog.Int("http_status", resp.StatusCode),
		)
		f.recordFailure(agent.ID, "http_status")
		return fmt.Errorf("HTTPステータス異常: %d", resp.StatusCode)
	}

	// レスポンスボディを読み込み（最大サイズ制限付き）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("agent_id", agent.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("レスポンス読み取り失敗: %w", err)
	}

	// gofeedでフィードをパース
	parser := gofeed.NewParser()
	parsedFeed, err := parser.ParseString(string(body))
	if err != nil {
		f.logger.Error("ニュースフィードのパースに失敗しました",
			slog.String("agent_id", agent.ID),
			slog.String("feed_url", agent.NewsFeedURL),
			slog.String("error", err.Error()),
		)
		if f.metrics != nil {
			f.metrics.RecordParseFailure(agent.ID)
		}
		f.recordFailure(agent.ID, "parse_error")
		return fmt.Errorf("フィードのパースに失敗: %w", err)
	}

	// gofeedの記事をParsedNewsItemに変換して取り込み
	parsedItems := convertGofeedItems(parsedFeed.Items)

	inserted, updated, err := f.importer.ImportItems(ctx, agent.ID, parsedItems)
	if err != nil {
		f.logger.Error("記事の取り込みに失敗しました",
			slog.String("agent_id", agent.ID),
			slog.String("error", err.Error()),
		)
		f.recordFailure(agent.ID, "import_error")
		return fmt.Errorf("記事の取り込みに失敗: %w", err)
	}

	duration := time.Since(start)
	if f.metrics != nil {
		f.metrics.RecordFetchSuccess(agent.ID)
		f.metrics.RecordFetchLatency(duration)
		f.metrics.RecordPostsImported(inserted + updated)
	}
	f.logger.Info("ニュースフィードの取得が完了しました",
		slog.String("agent_id", agent.ID),
		slog.String("feed_url", agent.NewsFeedURL),
		slog.Int("http_status", resp.StatusCode),
		slog.Int("items_inserted", inserted),
		slog.Int("items_updated", updated),
		slog.Int("items_total", len(parsedItems)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// recordFailure はフェッチ失敗メトリクスを記録する。
func (f *Fetcher) recordFailure(agentID, reason string) {
	if f.metrics != nil {
		f.metrics.RecordFetchFailure(agentID, reason)
	}
}

// convertGofeedItems はgofeedの記事をmodel.ParsedNewsItemに変換する。
func convertGofeedItems(items []*gofeed.Item) []model.ParsedNewsItem {
	parsedItems := make([]model.ParsedNewsItem, 0, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}

		parsed := model.ParsedNewsItem{
			Title:   item.Title,
			Link:    item.Link,
			Content: item.Content,
		}

		// GUIDの設定: gofeedはGUIDをitem.GUIDに格納
		if item.GUID != "" {
			parsed.GUID = item.GUID
		}

		// 公開日時
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			parsed.PublishedAt = &t
		} else if item.UpdatedParsed != nil {
			t := *item.UpdatedParsed
			parsed.PublishedAt = &t
		}

		// Contentが空の場合はDescriptionを使用
		if parsed.Content == "" && item.Description != "" {
			parsed.Content = item.Description
		}

		// アイキャッチ画像: item.Image > 画像enclosureの順で採用
		if item.Image != nil && item.Image.URL != "" {
			parsed.Image = item.Image.URL
		} else {
			for _, enc := range item.Enclosures {
				if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
					parsed.Image = enc.URL
					break
				}
			}
		}

		// LinkがなくGUIDがURL形式の場合はGUIDをLinkとして使用
		if parsed.Link == "" && parsed.GUID != "" &&
			(strings.HasPrefix(parsed.GUID, "http://") || strings.HasPrefix(parsed.GUID, "https://")) {
			parsed.Link = parsed.GUID
		}

		parsedItems = append(parsedItems, parsed)
	}

	return parsedItems
}
