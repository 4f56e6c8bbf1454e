package terabox

import (
	"sort"
	"strings"
)

// Credentials 上游账号，String()不输出密码
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) String() string {
	return c.Email
}

func (c Credentials) Empty() bool {
	return c.Email == "" || c.Password == ""
}

// SessionCookies 登录得到的Cookie，名称到值
type SessionCookies map[string]string

// Header 拼成Cookie请求头，按名称排序保证输出稳定
func (s SessionCookies) Header() string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+s[name])
	}
	return strings.Join(parts, "; ")
}

// ShareContext 从分享页提取出的jsToken和shorturl，只在单次请求内有效
type ShareContext struct {
	JsToken  string
	ShortURL string
}

// SharePage 分享页内容以及跟随跳转后的最终URL
type SharePage struct {
	Body     string
	FinalURL string
}

// ListEntry 分享列表接口返回的条目
// isdir	int	0 文件、1 目录
// dlink	string	文件下载地址，目录没有
// path	string	服务端路径，列出子目录时作为dir参数
type ListEntry struct {
	FsId           uint64 `json:"fs_id"`
	ServerFilename string `json:"server_filename"`
	Path           string `json:"path"`
	Size           int64  `json:"size"`
	IsDir          int    `json:"isdir"`
	Category       int    `json:"category"`
	ServerMtime    int64  `json:"server_mtime"`
	Dlink          string `json:"dlink,omitempty"`
}

func (e *ListEntry) IsDirectory() bool {
	return e.IsDir == 1
}

type ListResponse struct {
	Errno  int          `json:"errno"`
	Errmsg string       `json:"errmsg"`
	List   []*ListEntry `json:"list"`
}
