package controllers

import (
	"errors"
	"net/http"
	"strings"

	"TeraLink/internal/helpers"
	"TeraLink/internal/terabox"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorResponse 所有失败响应的统一格式
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// statusForError 错误类型到HTTP状态码的唯一映射
// 参数错误和上游errno返回400，登录、解析和网络错误返回500
func statusForError(err error) int {
	switch {
	case errors.Is(err, terabox.ErrInvalidInput):
		return http.StatusBadRequest
	case terabox.IsUpstreamError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageForError 上游errno原样返回errmsg，参数错误去掉前缀
func messageForError(err error) string {
	var upstreamErr *terabox.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Message
	}
	msg := err.Error()
	if errors.Is(err, terabox.ErrInvalidInput) {
		msg = strings.TrimPrefix(msg, terabox.ErrInvalidInput.Error()+": ")
	}
	if msg == "" {
		msg = "An unexpected error occurred"
	}
	return msg
}

func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		helpers.WebLog.Errorf("%s %s 失败: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		helpers.WebLog.Warnf("%s %s 请求被拒绝: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, ErrorResponse{Status: StatusError, Message: messageForError(err)})
}
