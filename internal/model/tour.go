// Package model はドメインモデルを定義する。
package model

// Tour はツアーエージェントが提供するツアー商品を表す。
// このAPIでは読み取り専用（登録・更新は掲載管理側で行われる）。
type Tour struct {
	ID          string
	TourAgentID string
	Title       string
	Description string
	Duration    string
	GroupSize   string
	StartDates  string
	Price       string
	Image       string
	Featured    bool
}
