package controllers

import (
	"context"
	"fmt"
	"net/http"

	"TeraLink/internal/helpers"
	"TeraLink/internal/manifest"
	"TeraLink/internal/terabox"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	StreamTypeFile  = "file"
	StreamTypeDone  = "done"
	StreamTypeError = "error"
)

// StreamMessage websocket推送的消息，file为单条记录，done为汇总，error为失败原因
type StreamMessage struct {
	Type       string               `json:"type"`
	File       *manifest.FileRecord `json:"file,omitempty"`
	TotalBytes int64                `json:"total_bytes"`
	TotalSize  string               `json:"total_size"`
	FileCount  int                  `json:"file_count"`
	DirCount   int                  `json:"dir_count"`
	Meta       *manifest.Meta       `json:"_meta,omitempty"`
	Status     int                  `json:"status,omitempty"`
	Message    string               `json:"message,omitempty"`
}

// StreamShareList 通过websocket逐条推送分享中的文件
// 参数在升级连接之前校验，错误直接返回400
func (s *ShareController) StreamShareList(c *gin.Context) {
	var req shareListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", terabox.ErrInvalidInput, err))
		return
	}
	if req.Link == "" {
		respondError(c, fmt.Errorf("%w: No link provided", terabox.ErrInvalidInput))
		return
	}
	if err := manifest.ValidateLink(req.Link); err != nil {
		respondError(c, err)
		return
	}
	mode, err := s.mode(req.Mode)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		helpers.WebLog.Errorf("升级WebSocket连接失败: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 客户端断开后取消正在进行的解析
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	m, err := s.resolver.Stream(ctx, req.Link, s.cred, mode, func(rec manifest.FileRecord, totalBytes int64) error {
		return conn.WriteJSON(StreamMessage{
			Type:       StreamTypeFile,
			File:       &rec,
			TotalBytes: totalBytes,
			TotalSize:  helpers.FormatFileSize(totalBytes),
		})
	})
	if err != nil {
		helpers.WebLog.Warnf("分享流式解析失败 %s: %v", req.Link, err)
		if werr := conn.WriteJSON(StreamMessage{
			Type:    StreamTypeError,
			Status:  statusForError(err),
			Message: messageForError(err),
		}); werr != nil {
			helpers.WebLog.Errorf("发送错误消息失败: %v", werr)
		}
		return
	}
	if werr := conn.WriteJSON(StreamMessage{
		Type:       StreamTypeDone,
		TotalBytes: m.TotalBytes,
		TotalSize:  m.TotalSize,
		FileCount:  m.FileCount,
		DirCount:   m.DirCount,
		Meta:       m.Meta,
	}); werr != nil {
		helpers.WebLog.Errorf("发送汇总消息失败: %v", werr)
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
