// Package model はドメインモデルを定義する。
package model

import "time"

// TourAgent はディレクトリに掲載される旅行代理店を表す。
// 作成・更新・削除は管理者のみが行える。
type TourAgent struct {
	ID          string
	Name        string
	Logo        string
	Description string
	Phone       string
	Email       string
	Website     string
	NewsFeedURL string // エージェント公式サイトのRSS/AtomフィードURL（任意）
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserTourAgentLink はユーザーとツアーエージェントの多対多リンクを表す。
// このリンクの存在がユーザーに当該エージェントの管理権限を与える唯一の事実。
// (user_id, tour_agent_id) の組はDB制約で一意。
type UserTourAgentLink struct {
	ID          string
	UserID      string
	TourAgentID string
	CreatedAt   time.Time
}

// LinkedAgent はユーザー一覧に添えるリンク済みエージェントの要約。
type LinkedAgent struct {
	ID   string
	Name string
}

// UserWithAgents はユーザーとリンク済みエージェント一覧を結合したモデル。
// 管理コンソールのユーザー一覧で使用する。
type UserWithAgents struct {
	User
	Agents []LinkedAgent
}
