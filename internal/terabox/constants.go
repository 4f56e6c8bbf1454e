package terabox

const (
	// 接口路径
	LOGIN_PATH      = "/api/user/login"
	SHARE_LIST_PATH = "/share/list"

	// 登录成功的标志Cookie，没有它即视为登录失败
	SESSION_MARKER_COOKIE = "ndus"

	// 登录方式：邮箱密码
	LOGIN_TYPE_EMAIL = "1"

	// 分页配置
	LIST_PAGE_SIZE = 100
	MAX_LIST_PAGES = 1000

	MAX_REDIRECTS = 5

	DEFAULT_CACHE_KEY_PREFIX = "session:"
	MIN_SESSION_CACHE_SIZE   = 16 * 1024 * 1024
)

// 与百度网盘同源的errno，接口未返回errmsg时用于补全错误信息
var ErrnoMessages = map[int]string{
	-1:    "membership expired",
	-3:    "file does not exist",
	-6:    "authentication failed",
	-7:    "file or directory name is invalid or access denied",
	-9:    "file or directory does not exist",
	2:     "invalid parameters",
	105:   "share link does not exist",
	2131:  "share does not exist",
	31034: "request frequency limit hit",
	31045: "session token verification failed",
}
