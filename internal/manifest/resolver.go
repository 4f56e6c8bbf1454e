package manifest

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"TeraLink/internal/helpers"
	"TeraLink/internal/metrics"
	"TeraLink/internal/terabox"
)

// Upstream is the part of the TeraBox client the resolver needs.
type Upstream interface {
	FetchSharePage(ctx context.Context, link string, cookies terabox.SessionCookies) (*terabox.SharePage, error)
	ListDirectory(ctx context.Context, cookies terabox.SessionCookies, share terabox.ShareContext, dir string) ([]*terabox.ListEntry, error)
}

// Sessions hands out session cookies, cached or fresh.
type Sessions interface {
	Acquire(ctx context.Context, cred terabox.Credentials) (terabox.SessionCookies, error)
}

// Visitor is called for every record as soon as it is produced, with the
// total size of all files seen so far.
type Visitor func(rec FileRecord, totalBytes int64) error

type Options struct {
	// MaxDirectories caps how many subdirectories an eager walk expands.
	// Directories past the cap come back as continuations. 0 means no cap.
	MaxDirectories int
}

type Resolver struct {
	upstream Upstream
	sessions Sessions
	opts     Options
}

func NewResolver(upstream Upstream, sessions Sessions, opts Options) *Resolver {
	return &Resolver{upstream: upstream, sessions: sessions, opts: opts}
}

// pending is one directory waiting in the worklist.
type pending struct {
	dir    string
	folder string
}

// Resolve builds the manifest for a share link.
func (r *Resolver) Resolve(ctx context.Context, link string, cred terabox.Credentials, mode helpers.ListMode) (*Manifest, error) {
	return r.Stream(ctx, link, cred, mode, nil)
}

// Stream is Resolve with a per-record callback.
func (r *Resolver) Stream(ctx context.Context, link string, cred terabox.Credentials, mode helpers.ListMode, visit Visitor) (*Manifest, error) {
	link = strings.TrimSpace(link)
	if err := ValidateLink(link); err != nil {
		return nil, err
	}
	mode, err := normalizeMode(mode)
	if err != nil {
		return nil, err
	}
	cookies, err := r.sessions.Acquire(ctx, cred)
	if err != nil {
		return nil, err
	}
	page, err := r.upstream.FetchSharePage(ctx, link, cookies)
	if err != nil {
		return nil, err
	}
	share, err := terabox.ExtractShareContext(page.Body, page.FinalURL)
	if err != nil {
		helpers.AppLogger.Warnf("分享页解析失败 %s (最终地址 %s): %v", link, page.FinalURL, err)
		return nil, err
	}
	m, err := r.walk(ctx, cookies, share, pending{}, mode, visit)
	if err != nil {
		return nil, err
	}
	m.Meta = &Meta{JsToken: share.JsToken, ShortURL: share.ShortURL, Mode: mode}
	return m, nil
}

// ResolveDirectory lists one directory from a continuation. The share page
// is not fetched again; the token and short link come from the continuation.
func (r *Resolver) ResolveDirectory(ctx context.Context, cont Continuation, cred terabox.Credentials, mode helpers.ListMode) (*Manifest, error) {
	if cont.Path == "" || cont.JsToken == "" || cont.ShortURL == "" {
		return nil, fmt.Errorf("%w: missing required parameters: path, jsToken, shorturl", terabox.ErrInvalidInput)
	}
	mode, err := normalizeMode(mode)
	if err != nil {
		return nil, err
	}
	cookies, err := r.sessions.Acquire(ctx, cred)
	if err != nil {
		return nil, err
	}
	folder := cont.Folder
	if folder == "" {
		folder = cont.Path
	}
	m, err := r.walk(ctx, cookies, cont.Share(), pending{dir: cont.Path, folder: folder}, mode, nil)
	if err != nil {
		return nil, err
	}
	m.Directory = cont.Path
	m.Meta = &Meta{JsToken: cont.JsToken, ShortURL: cont.ShortURL, Mode: mode}
	return m, nil
}

// walk drains a FIFO worklist starting at root. Listings are issued one at a
// time in discovery order. In lazy mode nothing is ever enqueued, so only
// root is listed.
func (r *Resolver) walk(ctx context.Context, cookies terabox.SessionCookies, share terabox.ShareContext, root pending, mode helpers.ListMode, visit Visitor) (*Manifest, error) {
	start := time.Now()
	m := newManifest()
	queue := []pending{root}
	scheduled := 0
	listCalls := 0

	emit := func(rec FileRecord) error {
		m.add(rec)
		if visit != nil {
			return visit(rec, m.TotalBytes)
		}
		return nil
	}

	var walkErr error
	for len(queue) > 0 && walkErr == nil {
		cur := queue[0]
		queue = queue[1:]

		entries, err := r.upstream.ListDirectory(ctx, cookies, share, cur.dir)
		listCalls++
		if err != nil {
			walkErr = err
			break
		}
		for _, entry := range entries {
			if !entry.IsDirectory() {
				if walkErr = emit(fileRecord(entry, cur.folder)); walkErr != nil {
					break
				}
				continue
			}
			childFolder := path.Join(cur.folder, entry.ServerFilename)
			if mode == helpers.ListModeEager && r.canExpand(scheduled) {
				scheduled++
				queue = append(queue, pending{dir: entry.Path, folder: childFolder})
				continue
			}
			if walkErr = emit(directoryRecord(entry, cur.folder, childFolder, share)); walkErr != nil {
				break
			}
		}
	}

	metrics.RecordResolve(string(mode), listCalls, time.Since(start), walkErr)
	if walkErr != nil {
		helpers.AppLogger.Warnf("列出分享 %s 失败，已完成 %d 次列表请求: %v", share.ShortURL, listCalls, walkErr)
		return nil, walkErr
	}
	helpers.AppLogger.Infof("分享 %s 解析完成: 模式=%s, 列表请求=%d, 文件=%d, 目录=%d, 总大小=%s, 耗时=%s",
		share.ShortURL, mode, listCalls, m.FileCount, m.DirCount, m.TotalSize, time.Since(start))
	return m, nil
}

func (r *Resolver) canExpand(scheduled int) bool {
	return r.opts.MaxDirectories == 0 || scheduled < r.opts.MaxDirectories
}

func normalizeMode(mode helpers.ListMode) (helpers.ListMode, error) {
	parsed, err := helpers.ParseListMode(string(mode))
	if err != nil {
		return "", fmt.Errorf("%w: %v", terabox.ErrInvalidInput, err)
	}
	if parsed == "" {
		return helpers.ListModeLazy, nil
	}
	return parsed, nil
}

// ValidateLink checks the link is an absolute http(s) URL. No network is touched.
func ValidateLink(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return fmt.Errorf("%w: No link provided", terabox.ErrInvalidInput)
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: link must be an absolute http(s) URL", terabox.ErrInvalidInput)
	}
	return nil
}
