package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ultra-rd/Turkistn/internal/model"
)

// PostgresTourRepo はPostgreSQLを使用したツアーリポジトリ。
// このAPIではツアーは読み取り専用。
type PostgresTourRepo struct {
	db *sql.DB
}

// NewPostgresTourRepo はPostgresTourRepoを生成する。
func NewPostgresTourRepo(db *sql.DB) *PostgresTourRepo {
	return &PostgresTourRepo{db: db}
}

// ListByAgentID はエージェントのツアー一覧をfeatured優先で返す。
// featuredがNULLの行は非featuredとして扱う。
func (r *PostgresTourRepo) ListByAgentID(ctx context.Context, agentID string) ([]*model.Tour, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tour_agent_id, title, description, duration, group_size, start_dates, price, image,
		        COALESCE(featured, false)
		 FROM tours WHERE tour_agent_id = $1
		 ORDER BY COALESCE(featured, false) DESC, id ASC`,
		agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("ツアー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var tours []*model.Tour
	for rows.Next() {
		tour := &model.Tour{}
		if err := rows.Scan(
			&tour.ID, &tour.TourAgentID, &tour.Title, &tour.Description, &tour.Duration,
			&tour.GroupSize, &tour.StartDates, &tour.Price, &tour.Image, &tour.Featured,
		); err != nil {
			return nil, fmt.Errorf("ツアー行の読み取りに失敗しました: %w", err)
		}
		tours = append(tours, tour)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ツアー一覧の走査に失敗しました: %w", err)
	}
	return tours, nil
}

// compile-time interface check
var _ TourRepository = (*PostgresTourRepo)(nil)
