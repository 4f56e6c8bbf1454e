package terabox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"TeraLink/internal/helpers"
)

// ListDirectory 列出分享中的一个目录，dir为空表示根目录
// 按页拉取直到某页不足LIST_PAGE_SIZE条
func (c *Client) ListDirectory(ctx context.Context, cookies SessionCookies, share ShareContext, dir string) ([]*ListEntry, error) {
	entries := make([]*ListEntry, 0)
	for page := 1; page <= MAX_LIST_PAGES; page++ {
		list, err := c.listPage(ctx, cookies, share, dir, page)
		if err != nil {
			return nil, err
		}
		entries = append(entries, list...)
		if len(list) < LIST_PAGE_SIZE {
			return entries, nil
		}
	}
	helpers.TeraBoxLog.Warnf("目录 %q 超过 %d 页，停止继续拉取", dir, MAX_LIST_PAGES)
	return entries, nil
}

func (c *Client) listPage(ctx context.Context, cookies SessionCookies, share ShareContext, dir string, page int) ([]*ListEntry, error) {
	params := map[string]string{
		"app_id":   c.appId,
		"jsToken":  share.JsToken,
		"shorturl": share.ShortURL,
		"page":     strconv.Itoa(page),
		"num":      strconv.Itoa(LIST_PAGE_SIZE),
	}
	if dir != "" {
		params["dir"] = dir
	}
	req := c.newRequest(ctx, cookies).SetQueryParams(params)
	resp, err := c.execute("share_list", req, http.MethodGet, SHARE_LIST_PATH)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &ListResponse{}
	if err := json.Unmarshal(resp.Bytes(), result); err != nil {
		if !resp.IsSuccess() {
			return nil, &NetworkError{Op: "share_list", Err: fmt.Errorf("unexpected status %s", resp.Status())}
		}
		return nil, &NetworkError{Op: "share_list", Err: fmt.Errorf("unmarshal list response failed: %w", err)}
	}
	if result.Errno != 0 {
		helpers.TeraBoxLog.Warnf("列出目录 %q 失败: errno=%d, errmsg=%s", dir, result.Errno, result.Errmsg)
		return nil, NewUpstreamError(result.Errno, result.Errmsg)
	}
	return result.List, nil
}
