package terabox

import (
	"context"
	"fmt"
	"net/http"
)

// Login 使用邮箱密码登录，返回响应中的全部Cookie
// 200~499之间的状态码都不视为传输错误，是否登录成功只看是否返回了ndus
func (c *Client) Login(ctx context.Context, cred Credentials) (SessionCookies, error) {
	req := c.newRequest(ctx, nil).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"login_email": cred.Email,
			"login_pwd":   cred.Password,
			"login_type":  LOGIN_TYPE_EMAIL,
		})
	resp, err := c.execute("login", req, http.MethodPost, LOGIN_PATH)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	status := resp.StatusCode()
	if status < 200 || status >= 500 {
		return nil, &NetworkError{Op: "login", Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}
	cookies := parseSetCookies(resp.Header().Values("Set-Cookie"))
	if cookies[SESSION_MARKER_COOKIE] == "" {
		return nil, &AuthenticationError{StatusCode: status}
	}
	return cookies, nil
}

// parseSetCookies 只取每个Set-Cookie的名称和值，忽略属性
func parseSetCookies(headers []string) SessionCookies {
	cookies := make(SessionCookies, len(headers))
	for _, header := range headers {
		cookie, err := http.ParseSetCookie(header)
		if err != nil || cookie.Name == "" {
			continue
		}
		cookies[cookie.Name] = cookie.Value
	}
	return cookies
}
