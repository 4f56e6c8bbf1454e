package terabox

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput 调用方参数缺失或格式错误，不会发起任何网络请求
	ErrInvalidInput = errors.New("invalid input")
	// ErrTokenNotFound 分享页中没有匹配到jsToken
	ErrTokenNotFound = errors.New("jsToken not found")
	// ErrShortLinkNotFound 跳转后的URL和页面内容中都没有shorturl
	ErrShortLinkNotFound = errors.New("failed to extract shorturl")
)

// AuthenticationError 登录请求本身成功，但响应中没有会话Cookie
type AuthenticationError struct {
	StatusCode int
	Reason     string
}

func (e *AuthenticationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("login failed: %s", e.Reason)
	}
	return fmt.Sprintf("login failed: no %s cookie in response (status %d), check credentials", SESSION_MARKER_COOKIE, e.StatusCode)
}

// NetworkError 出站请求的传输层失败或超时
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UpstreamError 列表接口在响应体中返回了非0的errno
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: errno=%d, message=%s", e.Code, e.Message)
}

func NewUpstreamError(code int, message string) *UpstreamError {
	if message == "" {
		if known, ok := ErrnoMessages[code]; ok {
			message = known
		} else {
			message = "Unknown error"
		}
	}
	return &UpstreamError{Code: code, Message: message}
}

func IsUpstreamError(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr)
}

func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}
