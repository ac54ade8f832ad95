package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ultra-rd/Turkistn/internal/model"
)

// PostgresLinkRepo はPostgreSQLを使用したユーザー・エージェントリンクリポジトリ。
type PostgresLinkRepo struct {
	db *sql.DB
}

// NewPostgresLinkRepo はPostgresLinkRepoを生成する。
func NewPostgresLinkRepo(db *sql.DB) *PostgresLinkRepo {
	return &PostgresLinkRepo{db: db}
}

// FindByUserAndAgent はユーザーIDとエージェントIDでリンクを検索する。見つからない場合はnilを返す。
func (r *PostgresLinkRepo) FindByUserAndAgent(ctx context.Context, userID, agentID string) (*model.UserTourAgentLink, error) {
	link := &model.UserTourAgentLink{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, tour_agent_id, created_at
		 FROM user_tour_agents WHERE user_id = $1 AND tour_agent_id = $2`,
		userID, agentID,
	).Scan(&link.ID, &link.UserID, &link.TourAgentID, &link.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("リンクの検索に失敗しました: %w", err)
	}

	return link, nil
}

// Create はリンクを作成する。
// (user_id, tour_agent_id)の一意制約に違反した場合はエラーを返す。
func (r *PostgresLinkRepo) Create(ctx context.Context, link *model.UserTourAgentLink) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_tour_agents (id, user_id, tour_agent_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		link.ID, link.UserID, link.TourAgentID, link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("リンクの作成に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserAndAgent は両フィールドが一致するリンクを削除する。
func (r *PostgresLinkRepo) DeleteByUserAndAgent(ctx context.Context, userID, agentID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tour_agents WHERE user_id = $1 AND tour_agent_id = $2`,
		userID, agentID,
	)
	if err != nil {
		return fmt.Errorf("リンクの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("リンクが見つかりません: user=%s agent=%s", userID, agentID)
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全リンクを削除する。
func (r *PostgresLinkRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tour_agents WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの全リンクの削除に失敗しました: %w", err)
	}
	return nil
}

// ListAllWithAgents は全リンクをエージェント名付きで返す。
func (r *PostgresLinkRepo) ListAllWithAgents(ctx context.Context) ([]UserAgentLinkRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT uta.user_id, ta.id, ta.name
		 FROM user_tour_agents uta
		 JOIN tour_agents ta ON uta.tour_agent_id = ta.id
		 ORDER BY uta.created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("リンク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []UserAgentLinkRow
	for rows.Next() {
		var row UserAgentLinkRow
		if err := rows.Scan(&row.UserID, &row.Agent.ID, &row.Agent.Name); err != nil {
			return nil, fmt.Errorf("リンク行の読み取りに失敗しました: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("リンク一覧の走査に失敗しました: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ LinkRepository = (*PostgresLinkRepo)(nil)
