package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ultra-rd/Turkistn/internal/model"
)

// PostgresPhotoRepo はPostgreSQLを使用した写真リポジトリ。
type PostgresPhotoRepo struct {
	db *sql.DB
}

// NewPostgresPhotoRepo はPostgresPhotoRepoを生成する。
func NewPostgresPhotoRepo(db *sql.DB) *PostgresPhotoRepo {
	return &PostgresPhotoRepo{db: db}
}

// FindByID は指定IDの写真を取得する。見つからない場合はnilを返す。
func (r *PostgresPhotoRepo) FindByID(ctx context.Context, id string) (*model.TourAgentPhoto, error) {
	photo := &model.TourAgentPhoto{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tour_agent_id, photo, COALESCE(caption, ''), created_at
		 FROM tour_agent_photos WHERE id = $1`,
		id,
	).Scan(&photo.ID, &photo.TourAgentID, &photo.Photo, &photo.Caption, &photo.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("写真の取得に失敗しました: %w", err)
	}

	return photo, nil
}

// ListByAgentID はエージェントの写真一覧を作成日時の降順で返す。
func (r *PostgresPhotoRepo) ListByAgentID(ctx context.Context, agentID string) ([]*model.TourAgentPhoto, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tour_agent_id, photo, COALESCE(caption, ''), created_at
		 FROM tour_agent_photos WHERE tour_agent_id = $1 ORDER BY created_at DESC`,
		agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("写真一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var photos []*model.TourAgentPhoto
	for rows.Next() {
		photo := &model.TourAgentPhoto{}
		if err := rows.Scan(&photo.ID, &photo.TourAgentID, &photo.Photo, &photo.Caption, &photo.CreatedAt); err != nil {
			return nil, fmt.Errorf("写真行の読み取りに失敗しました: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("写真一覧の走査に失敗しました: %w", err)
	}
	return photos, nil
}

// Create は写真を作成する。
func (r *PostgresPhotoRepo) Create(ctx context.Context, photo *model.TourAgentPhoto) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tour_agent_photos (id, tour_agent_id, photo, caption, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)`,
		photo.ID, photo.TourAgentID, photo.Photo, photo.Caption, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("写真の作成に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの写真を削除する。
func (r *PostgresPhotoRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tour_agent_photos WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("写真の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("写真が見つかりません: %s", id)
	}
	return nil
}

// compile-time interface check
var _ PhotoRepository = (*PostgresPhotoRepo)(nil)
