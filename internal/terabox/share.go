package terabox

import (
	"context"
	"fmt"
	"net/http"
)

// FetchSharePage 带上会话Cookie打开分享链接，返回页面内容和跟随跳转后的最终URL
// 4xx不在这里报错，页面内容不匹配会在提取jsToken时表现为ErrTokenNotFound
func (c *Client) FetchSharePage(ctx context.Context, link string, cookies SessionCookies) (*SharePage, error) {
	req := c.newRequest(ctx, cookies)
	resp, err := c.execute("share_page", req, http.MethodGet, link)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode() >= 500 {
		return nil, &NetworkError{Op: "share_page", Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}
	finalURL := link
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}
	return &SharePage{Body: resp.String(), FinalURL: finalURL}, nil
}
