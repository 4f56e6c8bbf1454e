package terabox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"TeraLink/internal/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig(baseURL string) helpers.ConfigTeraBox {
	cfg := helpers.DefaultConfig().TeraBox
	cfg.Domain = baseURL
	cfg.Timeout = 2
	return cfg
}

// newLoginServer 返回一个假的登录接口，每次登录都会计数
func newLoginServer(t *testing.T, delay time.Duration) (*httptest.Server, *int32) {
	t.Helper()
	var logins int32
	mux := http.NewServeMux()
	mux.HandleFunc(LOGIN_PATH, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&logins, 1)
		time.Sleep(delay)
		http.SetCookie(w, &http.Cookie{Name: "ndus", Value: "session-" + string(rune('0'+n)), Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "lang", Value: "en", Path: "/"})
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"errno":0}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logins
}

var testCred = Credentials{Email: "user@example.com", Password: "secret"}

func TestSessionProvider_ReusesSessionWithinTTL(t *testing.T) {
	srv, logins := newLoginServer(t, 0)
	clock := newFakeClock()
	provider := NewSessionProvider(NewClient(testConfig(srv.URL)), NewSessionCache(0, time.Hour, clock.Now))

	first, err := provider.Acquire(context.Background(), testCred)
	require.NoError(t, err)
	clock.Advance(59 * time.Minute)
	second, err := provider.Acquire(context.Background(), testCred)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(logins))
	assert.Equal(t, first, second)
	assert.Equal(t, "en", second["lang"])
}

func TestSessionProvider_RefreshesAfterTTL(t *testing.T) {
	srv, logins := newLoginServer(t, 0)
	clock := newFakeClock()
	provider := NewSessionProvider(NewClient(testConfig(srv.URL)), NewSessionCache(0, time.Hour, clock.Now))

	first, err := provider.Acquire(context.Background(), testCred)
	require.NoError(t, err)
	clock.Advance(time.Hour + time.Second)
	second, err := provider.Acquire(context.Background(), testCred)
	require.NoError(t, err)
	third, err := provider.Acquire(context.Background(), testCred)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(logins))
	assert.NotEqual(t, first["ndus"], second["ndus"])
	assert.Equal(t, second, third)
}

func TestSessionProvider_ConcurrentMissesLoginOnce(t *testing.T) {
	srv, logins := newLoginServer(t, 50*time.Millisecond)
	provider := NewSessionProvider(NewClient(testConfig(srv.URL)), NewSessionCache(0, time.Hour, nil))

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := provider.Acquire(context.Background(), testCred)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(logins))
}

func TestSessionProvider_CancelledWaiterDoesNotFailOthers(t *testing.T) {
	var logins int32
	started := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc(LOGIN_PATH, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&logins, 1) == 1 {
			close(started)
		}
		<-release
		http.SetCookie(w, &http.Cookie{Name: "ndus", Value: "shared", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	defer func() {
		select {
		case <-release:
		default:
			close(release)
		}
	}()
	provider := NewSessionProvider(NewClient(testConfig(srv.URL)), NewSessionCache(0, time.Hour, nil))

	ctx1, cancel1 := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := provider.Acquire(ctx1, testCred)
		firstErr <- err
	}()
	<-started

	type result struct {
		cookies SessionCookies
		err     error
	}
	second := make(chan result, 1)
	go func() {
		cookies, err := provider.Acquire(context.Background(), testCred)
		second <- result{cookies, err}
	}()
	time.Sleep(50 * time.Millisecond)

	// 第一个请求取消后立即返回，登录仍在进行
	cancel1()
	err := <-firstErr
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, IsNetworkError(err))

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "shared", res.cookies["ndus"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&logins))

	// 登录结果已写入缓存
	cookies, err := provider.Acquire(context.Background(), testCred)
	require.NoError(t, err)
	assert.Equal(t, "shared", cookies["ndus"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&logins))
}

func TestSessionProvider_Invalidate(t *testing.T) {
	srv, logins := newLoginServer(t, 0)
	provider := NewSessionProvider(NewClient(testConfig(srv.URL)), NewSessionCache(0, time.Hour, nil))

	_, err := provider.Acquire(context.Background(), testCred)
	require.NoError(t, err)
	provider.Invalidate(testCred)
	_, err = provider.Acquire(context.Background(), testCred)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(logins))
}

func TestSessionProvider_MissingCredentials(t *testing.T) {
	srv, logins := newLoginServer(t, 0)
	provider := NewSessionProvider(NewClient(testConfig(srv.URL)), NewSessionCache(0, time.Hour, nil))

	_, err := provider.Acquire(context.Background(), Credentials{Email: "user@example.com"})
	assert.True(t, IsAuthenticationError(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(logins))
}

func TestSessionCache_Fresh(t *testing.T) {
	clock := newFakeClock()
	cache := NewSessionCache(0, time.Hour, clock.Now)
	acquired := clock.Now()

	assert.True(t, cache.Fresh(acquired))
	clock.Advance(time.Hour - time.Nanosecond)
	assert.True(t, cache.Fresh(acquired))
	clock.Advance(time.Nanosecond)
	assert.False(t, cache.Fresh(acquired))
}

func TestSessionCache_PutReplacesWholesale(t *testing.T) {
	cache := NewSessionCache(0, time.Hour, nil)
	require.NoError(t, cache.Put("a", SessionCookies{"ndus": "1", "lang": "en"}))
	require.NoError(t, cache.Put("a", SessionCookies{"ndus": "2"}))

	cookies, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, SessionCookies{"ndus": "2"}, cookies)

	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestSessionCache_LargeCookiesAreCached(t *testing.T) {
	cache := NewSessionCache(0, time.Hour, nil)
	cookies := SessionCookies{
		"ndus":     strings.Repeat("n", 4096),
		"csrf":     strings.Repeat("c", 4096),
		"browseid": strings.Repeat("b", 2048),
	}
	require.NoError(t, cache.Put("a", cookies))

	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, cookies, got)
}

func TestCredentials_StringHidesPassword(t *testing.T) {
	assert.Equal(t, "user@example.com", testCred.String())
	assert.NotContains(t, testCred.String(), "secret")
}
