package server

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/werewolf/internal/config"
)

func TestConnectLimiter_Allow(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	cl := NewConnectLimiter(config.RateLimitConfig{PerSecond: 1, Burst: 3})
	cl.now = func() time.Time { return now }

	// Burst is allowed, then the bucket is empty
	for i := range 3 {
		assert.True(t, cl.Allow("127.0.0.1"), "request %d should be allowed", i)
	}
	assert.False(t, cl.Allow("127.0.0.1"))

	// Other IPs have their own bucket
	assert.True(t, cl.Allow("10.0.0.1"))

	// One token refills after a second
	now = now.Add(time.Second)
	assert.True(t, cl.Allow("127.0.0.1"))
	assert.False(t, cl.Allow("127.0.0.1"))
}

func TestConnectLimiter_SweepsIdleIPs(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	cl := NewConnectLimiter(config.RateLimitConfig{PerSecond: 1, Burst: 1})
	cl.now = func() time.Time { return now }
	cl.lastSweep = now

	cl.Allow("a")
	cl.Allow("b")
	assert.Equal(t, 2, cl.Len())

	now = now.Add(limiterIdleTTL + time.Minute)
	cl.Allow("c")
	assert.Equal(t, 1, cl.Len())
}

func TestConnectLimiter_Concurrency(t *testing.T) {
	t.Parallel()

	cl := NewConnectLimiter(config.RateLimitConfig{PerSecond: 1, Burst: 10})
	var wg sync.WaitGroup
	var allowed atomic.Int32

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cl.Allow("concurrent-test") {
				allowed.Add(1)
			}
		}()
	}

	wg.Wait()
	assert.GreaterOrEqual(t, allowed.Load(), int32(10))
	assert.Less(t, allowed.Load(), int32(50))
}

func TestMessageLimiter_Strikes(t *testing.T) {
	t.Parallel()

	ml := NewMessageLimiter(config.RateLimitConfig{PerSecond: 0.001, Burst: 2})

	for range 2 {
		ok, disconnect := ml.Allow()
		assert.True(t, ok)
		assert.False(t, disconnect)
	}

	for i := 1; i <= maxRateStrikes; i++ {
		ok, disconnect := ml.Allow()
		assert.False(t, ok)
		assert.False(t, disconnect, "strike %d", i)
	}

	ok, disconnect := ml.Allow()
	assert.False(t, ok)
	assert.True(t, disconnect)
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{"wildcard", []string{"*"}, "https://evil.example", true},
		{"listed", []string{"https://wolf.example"}, "https://wolf.example", true},
		{"case insensitive", []string{"https://Wolf.example"}, "https://WOLF.example", true},
		{"not listed", []string{"https://wolf.example"}, "https://evil.example", false},
		{"no origin header", []string{"https://wolf.example"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			oc := NewOriginChecker(tt.origins)
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.allowed, oc.Check(req))
		})
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "5.6.7.8"}, "9.9.9.9:1", "5.6.7.8"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote addr without port", nil, "9.9.9.9", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}
