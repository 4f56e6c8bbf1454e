package controllers

import (
	"context"
	"fmt"
	"net/http"

	"TeraLink/internal/helpers"
	"TeraLink/internal/manifest"
	"TeraLink/internal/terabox"

	"github.com/gin-gonic/gin"
)

// ShareResolver 解析分享链接的能力，由manifest.Resolver实现
type ShareResolver interface {
	Resolve(ctx context.Context, link string, cred terabox.Credentials, mode helpers.ListMode) (*manifest.Manifest, error)
	ResolveDirectory(ctx context.Context, cont manifest.Continuation, cred terabox.Credentials, mode helpers.ListMode) (*manifest.Manifest, error)
	Stream(ctx context.Context, link string, cred terabox.Credentials, mode helpers.ListMode, visit manifest.Visitor) (*manifest.Manifest, error)
}

type ShareController struct {
	resolver    ShareResolver
	cred        terabox.Credentials
	defaultMode helpers.ListMode
}

func NewShareController(resolver ShareResolver, cred terabox.Credentials, defaultMode helpers.ListMode) *ShareController {
	if defaultMode == "" {
		defaultMode = helpers.ListModeLazy
	}
	return &ShareController{resolver: resolver, cred: cred, defaultMode: defaultMode}
}

type shareListReq struct {
	Link string `form:"link"`
	Mode string `form:"mode"`
}

type shareDirectoryReq struct {
	Path     string `form:"path"`
	Folder   string `form:"folder"`
	JsToken  string `form:"jsToken"`
	ShortURL string `form:"shorturl"`
	Mode     string `form:"mode"`
}

// mode 请求未指定mode时使用配置的默认值
func (s *ShareController) mode(raw string) (helpers.ListMode, error) {
	mode, err := helpers.ParseListMode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", terabox.ErrInvalidInput, err)
	}
	if mode == "" {
		return s.defaultMode, nil
	}
	return mode, nil
}

// GetShareList 解析分享链接，返回文件清单
// @Summary 解析分享链接
// @Description 登录上游，读取分享页并列出文件，mode=eager时递归展开所有子目录
// @Tags 分享
// @Produce json
// @Param link query string true "分享链接"
// @Param mode query string false "eager或lazy"
// @Router /api [get]
func (s *ShareController) GetShareList(c *gin.Context) {
	var req shareListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", terabox.ErrInvalidInput, err))
		return
	}
	if req.Link == "" {
		respondError(c, fmt.Errorf("%w: No link provided", terabox.ErrInvalidInput))
		return
	}
	mode, err := s.mode(req.Mode)
	if err != nil {
		respondError(c, err)
		return
	}
	m, err := s.resolver.Resolve(c.Request.Context(), req.Link, s.cred, mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetShareDirectory 使用续取参数列出单个目录，不再读取分享页
// @Summary 列出分享中的子目录
// @Tags 分享
// @Produce json
// @Param path query string true "目录在服务端的路径"
// @Param jsToken query string true "分享页中的jsToken"
// @Param shorturl query string true "分享短链ID"
// @Param folder query string false "输出中使用的相对目录"
// @Param mode query string false "eager或lazy"
// @Router /api/directory [get]
func (s *ShareController) GetShareDirectory(c *gin.Context) {
	var req shareDirectoryReq
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", terabox.ErrInvalidInput, err))
		return
	}
	mode, err := s.mode(req.Mode)
	if err != nil {
		respondError(c, err)
		return
	}
	cont := manifest.Continuation{
		Path:     req.Path,
		Folder:   req.Folder,
		JsToken:  req.JsToken,
		ShortURL: req.ShortURL,
	}
	m, err := s.resolver.ResolveDirectory(c.Request.Context(), cont, s.cred, mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
