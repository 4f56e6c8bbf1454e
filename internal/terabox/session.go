package terabox

import (
	"context"
	"encoding/json"
	"time"

	"TeraLink/internal/helpers"
	"TeraLink/internal/metrics"

	"github.com/coocood/freecache"
	"golang.org/x/sync/singleflight"
)

// clockTimer 让freecache的过期判断使用注入的时钟
type clockTimer struct {
	now func() time.Time
}

func (t clockTimer) Now() uint32 {
	return uint32(t.now().Unix())
}

type sessionEntry struct {
	Cookies    SessionCookies `json:"cookies"`
	AcquiredAt time.Time      `json:"acquired_at"`
}

// SessionCache 进程内的登录Cookie缓存，按账号保存
// 只有 now - acquiredAt < ttl 时才复用，否则必须重新登录
type SessionCache struct {
	store *freecache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionCache now为nil时使用time.Now
func NewSessionCache(size int, ttl time.Duration, now func() time.Time) *SessionCache {
	if now == nil {
		now = time.Now
	}
	// freecache单条记录上限为 size/256/4，最小容量保证单条可达16KB
	if size < MIN_SESSION_CACHE_SIZE {
		size = MIN_SESSION_CACHE_SIZE
	}
	return &SessionCache{
		store: freecache.NewCacheCustomTimer(size, clockTimer{now: now}),
		ttl:   ttl,
		now:   now,
	}
}

func (c *SessionCache) TTL() time.Duration {
	return c.ttl
}

// Fresh 判断在acquiredAt获得的会话当前是否仍可复用
func (c *SessionCache) Fresh(acquiredAt time.Time) bool {
	return c.now().Sub(acquiredAt) < c.ttl
}

func (c *SessionCache) Get(account string) (SessionCookies, bool) {
	key := []byte(DEFAULT_CACHE_KEY_PREFIX + account)
	value, err := c.store.Get(key)
	if err != nil {
		return nil, false
	}
	var entry sessionEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		c.store.Del(key)
		return nil, false
	}
	if !c.Fresh(entry.AcquiredAt) {
		c.store.Del(key)
		return nil, false
	}
	return entry.Cookies, true
}

// Put 整体替换账号的会话，获取时间记为当前时间
func (c *SessionCache) Put(account string, cookies SessionCookies) error {
	value, err := json.Marshal(sessionEntry{Cookies: cookies, AcquiredAt: c.now()})
	if err != nil {
		return err
	}
	// 比ttl多留1秒，真正的过期判断由Fresh完成
	expireSeconds := int(c.ttl/time.Second) + 1
	return c.store.Set([]byte(DEFAULT_CACHE_KEY_PREFIX+account), value, expireSeconds)
}

func (c *SessionCache) Invalidate(account string) {
	c.store.Del([]byte(DEFAULT_CACHE_KEY_PREFIX + account))
}

// SessionProvider 获取会话Cookie：优先使用缓存，未命中或过期时登录
// 同一账号并发未命中时只会登录一次
type SessionProvider struct {
	client *Client
	cache  *SessionCache
	group  singleflight.Group
}

func NewSessionProvider(client *Client, cache *SessionCache) *SessionProvider {
	return &SessionProvider{client: client, cache: cache}
}

func (p *SessionProvider) Acquire(ctx context.Context, cred Credentials) (SessionCookies, error) {
	if cred.Empty() {
		return nil, &AuthenticationError{Reason: "TeraBox credentials are not configured"}
	}
	if cookies, ok := p.cache.Get(cred.Email); ok {
		metrics.RecordSessionCache(true)
		return cookies, nil
	}
	metrics.RecordSessionCache(false)

	// 登录不跟随单个请求的ctx，某个请求取消时其他等待者仍能拿到结果
	ch := p.group.DoChan(cred.Email, func() (interface{}, error) {
		// 等待期间其他请求可能已经登录完成
		if cookies, ok := p.cache.Get(cred.Email); ok {
			return cookies, nil
		}
		loginCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.client.RequestTimeout())
		defer cancel()
		helpers.TeraBoxLog.Infof("会话缓存未命中，正在登录账号 %s", cred)
		cookies, err := p.client.Login(loginCtx, cred)
		metrics.RecordLogin(err)
		if err != nil {
			helpers.TeraBoxLog.Errorf("登录账号 %s 失败: %v", cred, err)
			return nil, err
		}
		if err := p.cache.Put(cred.Email, cookies); err != nil {
			metrics.RecordSessionStoreError()
			helpers.TeraBoxLog.Errorf("保存会话缓存失败，下次请求将重新登录: %v", err)
		}
		helpers.TeraBoxLog.Infof("账号 %s 登录成功，会话缓存 %s", cred, p.cache.TTL())
		return cookies, nil
	})
	select {
	case <-ctx.Done():
		return nil, &NetworkError{Op: "login", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(SessionCookies), nil
	}
}

// Invalidate 丢弃账号的缓存会话，下次请求会重新登录
func (p *SessionProvider) Invalidate(cred Credentials) {
	p.cache.Invalidate(cred.Email)
}
