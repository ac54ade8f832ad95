// Package model はドメインモデルを定義する。
package model

import "time"

// TourAgentPost はツアーエージェントの投稿記事を表す。
type TourAgentPost struct {
	ID          string
	TourAgentID string
	Title       string
	Content     string // サニタイズ済みHTML
	Image       string
	SourceGUID  string // ニュースインポート由来の場合の重複判定キー
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TourAgentPhoto はツアーエージェントのギャラリー写真を表す。
// 作成後は不変で、削除のみ可能。
type TourAgentPhoto struct {
	ID          string
	TourAgentID string
	Photo       string
	Caption     string
	CreatedAt   time.Time
}

// ParsedNewsItem はエージェントのニュースフィードから取得した未保存の記事を表す。
// ワーカーがフィードをパースした後、インポートサービスに渡される。
type ParsedNewsItem struct {
	GUID        string
	Title       string
	Link        string
	Content     string // 未サニタイズのHTML
	Image       string
	PublishedAt *time.Time
}
