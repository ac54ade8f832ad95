package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ultra-rd/Turkistn/internal/model"
)

// PostgresTourAgentRepo はPostgreSQLを使用したツアーエージェントリポジトリ。
type PostgresTourAgentRepo struct {
	db *sql.DB
}

// NewPostgresTourAgentRepo はPostgresTourAgentRepoを生成する。
func NewPostgresTourAgentRepo(db *sql.DB) *PostgresTourAgentRepo {
	return &PostgresTourAgentRepo{db: db}
}

// agentColumns はtour_agentsのSELECT句。nullable列はCOALESCEで空文字に正規化する。
const agentColumns = `id, name, logo, COALESCE(description, ''), COALESCE(phone, ''),
	COALESCE(email, ''), COALESCE(website, ''), COALESCE(news_feed_url, ''), created_at, updated_at`

// scanAgent は1行をTourAgentに読み取る。
func scanAgent(row interface{ Scan(...any) error }) (*model.TourAgent, error) {
	agent := &model.TourAgent{}
	err := row.Scan(
		&agent.ID, &agent.Name, &agent.Logo, &agent.Description, &agent.Phone,
		&agent.Email, &agent.Website, &agent.NewsFeedURL, &agent.CreatedAt, &agent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// FindByID は指定IDのエージェントを取得する。見つからない場合はnilを返す。
func (r *PostgresTourAgentRepo) FindByID(ctx context.Context, id string) (*model.TourAgent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM tour_agents WHERE id = $1`,
		id,
	)
	agent, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ツアーエージェントの取得に失敗しました: %w", err)
	}
	return agent, nil
}

// List は全エージェントを作成日時の降順で返す。
// limitが1以上の場合は先頭limit件に制限する。
func (r *PostgresTourAgentRepo) List(ctx context.Context, limit int) ([]*model.TourAgent, error) {
	query := `SELECT ` + agentColumns + ` FROM tour_agents ORDER BY created_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("ツアーエージェント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectAgents(rows)
}

// ListWithNewsFeed はnews_feed_urlが設定されたエージェントを返す。
func (r *PostgresTourAgentRepo) ListWithNewsFeed(ctx context.Context) ([]*model.TourAgent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+agentColumns+` FROM tour_agents
		 WHERE news_feed_url IS NOT NULL AND news_feed_url <> ''
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ニュースフィード付きエージェント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectAgents(rows)
}

// collectAgents はrowsを走査してTourAgentのスライスに詰める。
func collectAgents(rows *sql.Rows) ([]*model.TourAgent, error) {
	var agents []*model.TourAgent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("ツアーエージェント行の読み取りに失敗しました: %w", err)
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ツアーエージェント一覧の走査に失敗しました: %w", err)
	}
	return agents, nil
}

// Create はエージェントを作成する。
func (r *PostgresTourAgentRepo) Create(ctx context.Context, agent *model.TourAgent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tour_agents (id, name, logo, description, phone, email, website, news_feed_url, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10)`,
		agent.ID, agent.Name, agent.Logo, agent.Description, agent.Phone,
		agent.Email, agent.Website, agent.NewsFeedURL, agent.CreatedAt, agent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ツアーエージェントの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はエージェントの掲載情報を更新し、updated_atを現在時刻にする。
func (r *PostgresTourAgentRepo) Update(ctx context.Context, agent *model.TourAgent) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tour_agents
		 SET name = $2, logo = $3, description = NULLIF($4, ''), phone = NULLIF($5, ''),
		     email = NULLIF($6, ''), website = NULLIF($7, ''), updated_at = NOW()
		 WHERE id = $1`,
		agent.ID, agent.Name, agent.Logo, agent.Description, agent.Phone, agent.Email, agent.Website,
	)
	if err != nil {
		return fmt.Errorf("ツアーエージェントの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ツアーエージェントが見つかりません: %s", agent.ID)
	}
	return nil
}

// UpdateNewsFeedURL はエージェントのニュースフィードURLを更新する。
func (r *PostgresTourAgentRepo) UpdateNewsFeedURL(ctx context.Context, id, feedURL string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tour_agents SET news_feed_url = NULLIF($2, ''), updated_at = NOW() WHERE id = $1`,
		id, feedURL,
	)
	if err != nil {
		return fmt.Errorf("ニュースフィードURLの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ツアーエージェントが見つかりません: %s", id)
	}
	return nil
}

// UpdateLogo はエージェントのロゴ参照を更新する。
func (r *PostgresTourAgentRepo) UpdateLogo(ctx context.Context, id, logo string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tour_agents SET logo = $2, updated_at = NOW() WHERE id = $1`,
		id, logo,
	)
	if err != nil {
		return fmt.Errorf("ロゴの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ツアーエージェントが見つかりません: %s", id)
	}
	return nil
}

// DeleteByID は指定IDのエージェントを削除する。
// 関連するposts、photos、tours、user_tour_agentsはCASCADE削除される。
func (r *PostgresTourAgentRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tour_agents WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("ツアーエージェントの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ツアーエージェントが見つかりません: %s", id)
	}
	return nil
}

// compile-time interface check
var _ TourAgentRepository = (*PostgresTourAgentRepo)(nil)
