// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーのグローバルロールを表す閉じた列挙型。
// 文字列比較ではなく型付き定数で分岐することで、認可分岐の網羅性を保証する。
type Role string

const (
	// RoleAnonymous は未認証状態を表す。DBには保存されない。
	RoleAnonymous Role = ""
	// RoleUser は一般ユーザー。管理権限を持たない。
	RoleUser Role = "user"
	// RoleAdmin は管理者。全ツアーエージェントと全ユーザーの管理権限を持つ。
	RoleAdmin Role = "admin"
	// RoleTourAgent はツアーエージェント担当者。リンクされたエージェントのみ管理できる。
	RoleTourAgent Role = "tour_agent"
)

// ParseRole は文字列からRoleを解析する。
// 未知の値はRoleUserにフォールバックする（DBのデフォルトと一致させる）。
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleUser, RoleAdmin, RoleTourAgent:
		return Role(s)
	default:
		return RoleUser
	}
}

// IsValid はロールがDBに保存可能な値かを返す。
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleTourAgent:
		return true
	}
	return false
}

// User はサービス利用ユーザーのプロフィールを表す。
// 初回認証時に自動作成され、ロールは管理者のみが変更できる。
type User struct {
	ID        string
	Email     string
	FullName  string
	Phone     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// 将来的に複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
