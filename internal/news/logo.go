package news

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxLogoPageSize はロゴ探索で読み込むHTMLの最大サイズ（1MB）。
const maxLogoPageSize = 1 * 1024 * 1024

// logoTimeout はロゴ探索のタイムアウト。
const logoTimeout = 5 * time.Second

// LogoFinderService はエージェント公式サイトからのロゴ探索のインターフェース。
type LogoFinderService interface {
	// DiscoverLogo はサイトURLからロゴ画像のURLを探索する。
	// headタグの og:image、apple-touch-icon、icon の順で探し、
	// いずれも見つからない場合は /favicon.ico を検証して返す。
	// 取得失敗時は空文字列を返す（エラーにはしない）。
	DiscoverLogo(ctx context.Context, siteURL string) string
}

// LogoFinder はロゴ探索機能の実装。
type LogoFinder struct {
	ssrfGuard SSRFValidator
}

// NewLogoFinder はLogoFinderの新しいインスタンスを生成する。
func NewLogoFinder(ssrfGuard SSRFValidator) *LogoFinder {
	return &LogoFinder{
		ssrfGuard: ssrfGuard,
	}
}

// DiscoverLogo はサイトURLからロゴ画像のURLを探索する。
// 管理コンソールでロゴ未指定のままエージェントを登録する際のフォールバックとして
// 使用されるため、失敗は空文字列として握りつぶしてログのみ残す。
func (f *LogoFinder) DiscoverLogo(ctx context.Context, siteURL string) string {
	if siteURL == "" {
		return ""
	}

	// SSRF検証
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(siteURL); err != nil {
			slog.Warn("ロゴ探索: SSRFブロック", "url", siteURL, "error", err)
			return ""
		}
	}

	// サイトHTMLを取得してheadタグからロゴ候補を探す
	if logoURL := f.findLogoInPage(ctx, siteURL); logoURL != "" {
		return logoURL
	}

	// フォールバック: /favicon.ico を検証
	faviconURL := guessDefaultFaviconURL(siteURL)
	if faviconURL == "" {
		return ""
	}
	if f.verifyImageURL(ctx, faviconURL) {
		return faviconURL
	}
	return ""
}

// findLogoInPage はサイトのHTMLを取得し、headタグからロゴ候補のURLを返す。
func (f *LogoFinder) findLogoInPage(ctx context.Context, siteURL string) string {
	client := f.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		slog.Warn("ロゴ探索: リクエスト作成失敗", "url", siteURL, "error", err)
		return ""
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, */*")

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("ロゴ探索: HTTPリクエスト失敗", "url", siteURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("ロゴ探索: HTTPステータス異常", "url", siteURL, "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoPageSize))
	if err != nil {
		slog.Warn("ロゴ探索: レスポンス読み取り失敗", "url", siteURL, "error", err)
		return ""
	}

	return parseLogoFromHTML(body, siteURL)
}

// parseLogoFromHTML はHTMLのheadタグからロゴ候補のURLを解析する。
// 優先順位: og:image > apple-touch-icon > icon/shortcut icon
func parseLogoFromHTML(htmlBody []byte, baseURL string) string {
	baseU, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	var ogImage, touchIcon, icon string

	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return pickLogoCandidate(ogImage, touchIcon, icon)

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			tagName := string(tn)

			if tagName == "body" {
				// bodyに入ったらheadの解析を終了
				return pickLogoCandidate(ogImage, touchIcon, icon)
			}
			if !hasAttr {
				continue
			}

			switch tagName {
			case "meta":
				var property, content string
				for {
					key, val, more := tokenizer.TagAttr()
					switch strings.ToLower(string(key)) {
					case "property", "name":
						property = strings.ToLower(string(val))
					case "content":
						content = string(val)
					}
					if !more {
						break
					}
				}
				if property == "og:image" && content != "" && ogImage == "" {
					ogImage = resolveURL(baseU, content)
				}

			case "link":
				var rel, href string
				for {
					key, val, more := tokenizer.TagAttr()
					switch strings.ToLower(string(key)) {
					case "rel":
						rel = strings.ToLower(string(val))
					case "href":
						href = string(val)
					}
					if !more {
						break
					}
				}
				if href == "" {
					continue
				}
				switch {
				case strings.Contains(rel, "apple-touch-icon") && touchIcon == "":
					touchIcon = resolveURL(baseU, href)
				case rel == "icon" || rel == "shortcut icon":
					if icon == "" {
						icon = resolveURL(baseU, href)
					}
				}
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "head" {
				return pickLogoCandidate(ogImage, touchIcon, icon)
			}
		}
	}
}

// pickLogoCandidate は優先順位に従ってロゴ候補を1つ選択する。
func pickLogoCandidate(ogImage, touchIcon, icon string) string {
	if ogImage != "" {
		return ogImage
	}
	if touchIcon != "" {
		return touchIcon
	}
	return icon
}

// verifyImageURL は指定URLが画像を返すかをGETで検証する。
func (f *LogoFinder) verifyImageURL(ctx context.Context, imageURL string) bool {
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(imageURL); err != nil {
			return false
		}
	}

	client := f.getHTTPClient()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	// ボディは捨てるがコネクション再利用のため読み切る
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxLogoPageSize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	return isImageMime(extractMimeType(resp.Header.Get("Content-Type")))
}

// getHTTPClient はHTTPクライアントを取得する。
func (f *LogoFinder) getHTTPClient() *http.Client {
	if f.ssrfGuard != nil {
		return f.ssrfGuard.NewSafeClient(logoTimeout, maxLogoPageSize)
	}
	return &http.Client{Timeout: logoTimeout}
}

// guessDefaultFaviconURL はサイトURLからデフォルトのfavicon URLを推測する。
func guessDefaultFaviconURL(siteURL string) string {
	if siteURL == "" {
		return ""
	}

	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}

	// パスを/favicon.icoに設定
	u.Path = "/favicon.ico"
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	// セミコロンの前の部分（charset等を除去）
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}

// isImageMime はMIMEタイプが画像かどうかを判定する。
func isImageMime(mimeType string) bool {
	if mimeType == "" {
		return false
	}
	return strings.HasPrefix(mimeType, "image/")
}

// compile-time interface check
var _ LogoFinderService = (*LogoFinder)(nil)
