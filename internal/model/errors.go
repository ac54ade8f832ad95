// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, agent, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidRole      = "INVALID_ROLE"
	ErrCodeSelfDemotion     = "SELF_DEMOTION"
	ErrCodeAgentNotFound    = "AGENT_NOT_FOUND"
	ErrCodePostNotFound     = "POST_NOT_FOUND"
	ErrCodePhotoNotFound    = "PHOTO_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeDuplicateLink    = "DUPLICATE_LINK"
	ErrCodeLinkNotFound     = "LINK_NOT_FOUND"
	ErrCodeFeedNotDetected  = "FEED_NOT_DETECTED"
	ErrCodeInvalidURL       = "INVALID_URL"
	ErrCodeSSRFBlocked      = "SSRF_BLOCKED"
	ErrCodeFetchFailed      = "FETCH_FAILED"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は認可エラーを生成する。
// 管理権限のないエージェントへの操作、管理者専用操作への一般ユーザーのアクセス、
// およびストア障害時のフェイルクローズの全てで同一のエラーを返す。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "管理者に権限の付与を依頼してください。",
	}
}

// NewMissingFieldError は必須フィールド未入力エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須項目が入力されていません: %s", field),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidRoleError は無効なロール指定エラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("無効なロールです: %s", role),
		Category: "validation",
		Action:   "ロールには user、admin、tour_agent のいずれかを指定してください。",
	}
}

// NewSelfDemotionError は管理者が自身のロールを降格しようとした場合のエラーを生成する。
func NewSelfDemotionError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfDemotion,
		Message:  "自分自身の管理者ロールを変更することはできません。",
		Category: "validation",
		Action:   "別の管理者にロール変更を依頼してください。",
	}
}

// NewAgentNotFoundError はツアーエージェント未検出エラーを生成する。
func NewAgentNotFoundError(agentID string) *APIError {
	return &APIError{
		Code:     ErrCodeAgentNotFound,
		Message:  fmt.Sprintf("指定されたツアーエージェントが見つかりません: %s", agentID),
		Category: "agent",
		Action:   "エージェントIDを確認してください。",
	}
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %s", postID),
		Category: "agent",
		Action:   "投稿IDを確認してください。",
	}
}

// NewPhotoNotFoundError は写真未検出エラーを生成する。
func NewPhotoNotFoundError(photoID string) *APIError {
	return &APIError{
		Code:     ErrCodePhotoNotFound,
		Message:  fmt.Sprintf("指定された写真が見つかりません: %s", photoID),
		Category: "agent",
		Action:   "写真IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewDuplicateLinkError は既にリンク済みのユーザーを再度リンクしようとした場合のエラーを生成する。
func NewDuplicateLinkError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateLink,
		Message:  "このユーザーは既に当該ツアーエージェントにリンクされています。",
		Category: "validation",
		Action:   "ユーザー一覧から既存のリンクを確認してください。",
	}
}

// NewLinkNotFoundError はリンクが見つからない場合のエラーを生成する。
func NewLinkNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeLinkNotFound,
		Message:  "指定されたユーザーとツアーエージェントのリンクが見つかりません。",
		Category: "validation",
		Action:   "ユーザー一覧からリンク状態を確認してください。",
	}
}

// NewFeedNotDetectedError はニュースフィード未検出エラーを生成する。
func NewFeedNotDetectedError(url string) *APIError {
	return &APIError{
		Code:     ErrCodeFeedNotDetected,
		Message:  fmt.Sprintf("指定されたURLからRSS/Atomフィードを検出できませんでした: %s", url),
		Category: "agent",
		Action:   "フィードのURLを直接入力するか、エージェントのサイトURLを確認してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewFetchFailedError は外部サイトへのHTTPアクセス失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("サイトへのアクセスに失敗しました: %s", reason),
		Category: "system",
		Action:   "URLが正しいか、サイトが稼働しているかを確認して再度お試しください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}
