package terabox

import (
	"net/url"
	"regexp"
	"strings"
)

// TokenPatternVersion 页面结构变化时需要同步更新下面的正则并递增版本号
const TokenPatternVersion = 2

var (
	// window.jsToken 的赋值在内联脚本中经过了百分号编码，值在 %22 与 %22 之间
	jsTokenPattern = regexp.MustCompile(`window\.jsToken.*?%22(.*?)%22`)
	// 页面中的 shorturl = 'xxx'，跳转URL中没有surl时使用
	shortURLPattern = regexp.MustCompile(`shorturl\s*=\s*['"]([^'"]+)['"]`)
	// 短链路径 /s/1xxx，其中 xxx 即 surl
	shortPathPattern = regexp.MustCompile(`/s/1([A-Za-z0-9_-]+)`)
)

// ExtractShareContext 从分享页内容和最终URL中提取jsToken与shorturl，不发起网络请求
// shorturl依次取：URL的surl参数、页面中的shorturl赋值、URL路径中的短链
func ExtractShareContext(body string, finalURL string) (ShareContext, error) {
	token, err := extractJsToken(body)
	if err != nil {
		return ShareContext{}, err
	}
	shortURL := extractShortURL(body, finalURL)
	if shortURL == "" {
		return ShareContext{}, ErrShortLinkNotFound
	}
	return ShareContext{JsToken: token, ShortURL: shortURL}, nil
}

func extractJsToken(body string) (string, error) {
	matches := jsTokenPattern.FindStringSubmatch(body)
	if len(matches) < 2 || matches[1] == "" {
		return "", ErrTokenNotFound
	}
	token, err := url.PathUnescape(matches[1])
	if err != nil {
		// 不是合法的百分号编码时原样使用
		token = matches[1]
	}
	return token, nil
}

func extractShortURL(body string, finalURL string) string {
	var parsed *url.URL
	if finalURL != "" {
		if u, err := url.Parse(finalURL); err == nil {
			parsed = u
			if surl := strings.TrimSpace(u.Query().Get("surl")); surl != "" {
				return surl
			}
		}
	}
	if matches := shortURLPattern.FindStringSubmatch(body); len(matches) == 2 {
		return matches[1]
	}
	if parsed != nil {
		if matches := shortPathPattern.FindStringSubmatch(parsed.Path); len(matches) == 2 {
			return matches[1]
		}
	}
	return ""
}
