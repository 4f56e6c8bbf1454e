package terabox

import (
	"context"
	"strings"
	"time"

	"TeraLink/internal/helpers"
	"TeraLink/internal/metrics"

	"resty.dev/v3"
)

// Client TeraBox网页接口客户端，不保存任何会话状态，Cookie由调用方传入
type Client struct {
	baseURL string
	appId   string
	timeout time.Duration
	client  *resty.Client
}

func NewClient(cfg helpers.ConfigTeraBox) *Client {
	baseURL := strings.TrimRight(cfg.Domain, "/")
	restyClient := resty.New()
	restyClient.SetTimeout(cfg.RequestTimeout()).
		SetBaseURL(baseURL).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(MAX_REDIRECTS)).
		SetHeader("User-Agent", cfg.UserAgent)
	// 会话Cookie只由SessionCache管理，不使用客户端自带的CookieJar
	restyClient.SetCookieJar(nil)

	return &Client{
		baseURL: baseURL,
		appId:   cfg.AppId,
		timeout: cfg.RequestTimeout(),
		client:  restyClient,
	}
}

func (c *Client) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// RequestTimeout 单次请求超时
func (c *Client) RequestTimeout() time.Duration {
	return c.timeout
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// newRequest 每个请求都带上超时和Cookie
func (c *Client) newRequest(ctx context.Context, cookies SessionCookies) *resty.Request {
	req := c.client.R().
		SetContext(ctx).
		SetTimeout(c.timeout)
	if len(cookies) > 0 {
		req.SetHeader("Cookie", cookies.Header())
	}
	return req
}

// execute 执行请求并记录耗时，传输层错误统一包装为NetworkError
func (c *Client) execute(endpoint string, req *resty.Request, method, url string) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, url)
	metrics.RecordUpstreamRequest(endpoint, time.Since(start), err)
	if err != nil {
		helpers.TeraBoxLog.Warnf("%s %s 请求失败: %v", method, endpoint, err)
		return resp, &NetworkError{Op: endpoint, Err: err}
	}
	helpers.TeraBoxLog.Debugf("%s %s 返回状态 %d 耗时 %s", method, endpoint, resp.StatusCode(), time.Since(start))
	return resp, nil
}
