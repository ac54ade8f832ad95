// Package authz はロール解決と管理権限判定を提供する。
//
// 判定は毎回Entity Store（Postgres）へ問い合わせる。キャッシュは持たないため、
// ロール変更やリンクの追加・削除は次のチェックから即座に反映される。
// ストア障害時は必ず権限なしとして扱う（フェイルクローズ）。
package authz

import (
	"context"
	"fmt"

	"github.com/Ultra-rd/Turkistn/internal/model"
	"github.com/Ultra-rd/Turkistn/internal/repository"
)

// RoleFinder はロール解決に必要なユーザー検索のインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type RoleFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// LinkFinder は管理権限判定に必要なリンク検索のインターフェース。
// repository.LinkRepositoryの部分集合として定義する。
type LinkFinder interface {
	FindByUserAndAgent(ctx context.Context, userID, agentID string) (*model.UserTourAgentLink, error)
}

// Resolver はロール解決と管理権限判定を行う。
// 副作用を持たない読み取り専用のコンポーネント。
// 操作主体のユーザーIDは常に引数で受け取り、アンビエントな状態には依存しない。
type Resolver struct {
	userRepo RoleFinder
	linkRepo LinkFinder
}

// NewResolver はResolverを生成する。
func NewResolver(userRepo RoleFinder, linkRepo LinkFinder) *Resolver {
	return &Resolver{
		userRepo: userRepo,
		linkRepo: linkRepo,
	}
}

// ResolveRole は指定ユーザーのグローバルロールを解決する。
// userIDが空の場合は未認証（RoleAnonymous）を返す。
// プロフィールが存在しない場合はデフォルトのRoleUserを返す。
func (r *Resolver) ResolveRole(ctx context.Context, userID string) (model.Role, error) {
	if userID == "" {
		return model.RoleAnonymous, nil
	}

	user, err := r.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.RoleAnonymous, fmt.Errorf("ロールの解決に失敗しました: %w", err)
	}
	if user == nil {
		return model.RoleUser, nil
	}

	return user.Role, nil
}

// CanManage は指定ユーザーが指定エージェントを管理できるかを判定する。
// 管理者は全エージェントを管理できる。それ以外はリンクが存在する場合のみ管理できる。
//
// ストア問い合わせが失敗した場合は必ずfalseとエラーを返す。
// エラーパスで管理権限を付与することは決してない（フェイルクローズ）。
func (r *Resolver) CanManage(ctx context.Context, userID, agentID string) (bool, error) {
	if userID == "" || agentID == "" {
		return false, nil
	}

	role, err := r.ResolveRole(ctx, userID)
	if err != nil {
		return false, err
	}

	switch role {
	case model.RoleAdmin:
		// 管理者はリンクの有無に関わらず全エージェントを管理できる
		return true, nil
	case model.RoleTourAgent, model.RoleUser:
		link, err := r.linkRepo.FindByUserAndAgent(ctx, userID, agentID)
		if err != nil {
			return false, fmt.Errorf("リンクの確認に失敗しました: %w", err)
		}
		return link != nil, nil
	case model.RoleAnonymous:
		return false, nil
	default:
		return false, nil
	}
}

// compile-time interface check
var _ RoleFinder = (repository.UserRepository)(nil)
var _ LinkFinder = (repository.LinkRepository)(nil)
