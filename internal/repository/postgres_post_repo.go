package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ultra-rd/Turkistn/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// postColumns はtour_agent_postsのSELECT句。
const postColumns = `id, tour_agent_id, title, content, COALESCE(image, ''), COALESCE(source_guid, ''), created_at, updated_at`

// scanPost は1行をTourAgentPostに読み取る。
func scanPost(row interface{ Scan(...any) error }) (*model.TourAgentPost, error) {
	post := &model.TourAgentPost{}
	err := row.Scan(
		&post.ID, &post.TourAgentID, &post.Title, &post.Content,
		&post.Image, &post.SourceGUID, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.TourAgentPost, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM tour_agent_posts WHERE id = $1`,
		id,
	)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	return post, nil
}

// FindByAgentAndGUID はtour_agent_idとsource_guidで投稿を検索する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByAgentAndGUID(ctx context.Context, agentID, guid string) (*model.TourAgentPost, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM tour_agent_posts
		 WHERE tour_agent_id = $1 AND source_guid = $2`,
		agentID, guid,
	)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("インポート元GUIDによる投稿の検索に失敗しました: %w", err)
	}
	return post, nil
}

// ListByAgentID はエージェントの投稿一覧を作成日時の降順で返す。
func (r *PostgresPostRepo) ListByAgentID(ctx context.Context, agentID string) ([]*model.TourAgentPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM tour_agent_posts
		 WHERE tour_agent_id = $1 ORDER BY created_at DESC`,
		agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var posts []*model.TourAgentPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("投稿行の読み取りに失敗しました: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投稿一覧の走査に失敗しました: %w", err)
	}
	return posts, nil
}

// Create は投稿を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.TourAgentPost) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tour_agent_posts (id, tour_agent_id, title, content, image, source_guid, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)`,
		post.ID, post.TourAgentID, post.Title, post.Content, post.Image, post.SourceGUID,
		post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は投稿のタイトル・本文・画像を更新し、updated_atを現在時刻にする。
func (r *PostgresPostRepo) Update(ctx context.Context, post *model.TourAgentPost) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tour_agent_posts
		 SET title = $2, content = $3, image = NULLIF($4, ''), updated_at = NOW()
		 WHERE id = $1`,
		post.ID, post.Title, post.Content, post.Image,
	)
	if err != nil {
		return fmt.Errorf("投稿の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("投稿が見つかりません: %s", post.ID)
	}
	return nil
}

// DeleteByID は指定IDの投稿を削除する。
func (r *PostgresPostRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tour_agent_posts WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("投稿の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("投稿が見つかりません: %s", id)
	}
	return nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
