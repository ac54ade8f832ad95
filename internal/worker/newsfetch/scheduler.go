package newsfetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Ultra-rd/Turkistn/internal/model"
	"github.com/Ultra-rd/Turkistn/internal/repository"
)

// AgentNewsFetcherService はエージェントニュース取得の実行インターフェース。
type AgentNewsFetcherService interface {
	// Fetch は指定エージェントのニュースフィードをフェッチし、投稿として取り込む。
	Fetch(ctx context.Context, agent *model.TourAgent) error
}

// Scheduler はニュース取得のスケジューリングと並列制御を行う。
// 一定間隔のティッカーでフィード設定済みエージェントを取得し、
// semaphoreパターンで最大並列数を制御しながらフェッチを実行する。
type Scheduler struct {
	agentRepo      repository.TourAgentRepository
	fetcher        AgentNewsFetcherService
	logger         *slog.Logger
	maxConcurrency int
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値10を使用する。
func NewScheduler(
	agentRepo repository.TourAgentRepository,
	fetcher AgentNewsFetcherService,
	logger *slog.Logger,
	maxConcurrency int,
) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &Scheduler{
		agentRepo:      agentRepo,
		fetcher:        fetcher,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("ニュース取得スケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	// 起動直後に1回実行
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("ニュース取得サイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("ニュース取得スケジューラを停止しました")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("ニュース取得サイクルの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce はフィード設定済みエージェントを1回取得し、並列でフェッチを実行する。
// semaphoreパターンで最大並列数を制御する。
// 個別エージェントの失敗はログに残して継続し、サイクル全体は止めない。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	agents, err := s.agentRepo.ListWithNewsFeed(ctx)
	if err != nil {
		return err
	}

	if len(agents) == 0 {
		s.logger.Info("ニュースフィード設定済みのエージェントはありません")
		return nil
	}

	s.logger.Info("ニュース取得サイクルを開始します",
		slog.Int("agent_count", len(agents)),
	)

	// semaphoreパターンで並列数を制御
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for _, agent := range agents {
		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(a *model.TourAgent) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			if err := s.fetcher.Fetch(ctx, a); err != nil {
				s.logger.Error("エージェントニュースの取得に失敗しました",
					slog.String("agent_id", a.ID),
					slog.String("feed_url", a.NewsFeedURL),
					slog.String("error", err.Error()),
				)
			}
		}(agent)
	}

	wg.Wait()

	duration := time.Since(start)
	s.logger.Info("ニュース取得サイクルが完了しました",
		slog.Int("agent_count", len(agents)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
