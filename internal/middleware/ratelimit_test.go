package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(perWindow int, window time.Duration, whitelist []string, onLimited func(string)) *RateLimiter {
	return NewRateLimiter(perWindow, window, whitelist, onLimited, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAllow_BurstThenRefill(t *testing.T) {
	rl := newLimiter(3, time.Minute, nil, nil)
	now := time.Now()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allowAt("1.2.3.4", now), "request %d", i)
	}
	assert.False(t, rl.allowAt("1.2.3.4", now))

	// Other clients have their own bucket.
	assert.True(t, rl.allowAt("5.6.7.8", now))

	// One token every 20s.
	assert.True(t, rl.allowAt("1.2.3.4", now.Add(21*time.Second)))
	assert.False(t, rl.allowAt("1.2.3.4", now.Add(22*time.Second)))
}

func TestMiddleware_RejectsWith429(t *testing.T) {
	limited := 0
	rl := newLimiter(1, time.Minute, nil, func(string) { limited++ })
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, limited)
}

func TestMiddleware_Whitelist(t *testing.T) {
	rl := newLimiter(1, time.Minute, []string{" 10.0.0.9 "}, nil)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 0, rl.Stats().TrackedIPs)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.10:4000"
	assert.Equal(t, "192.168.1.10", ClientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.1:9999, 10.0.0.1")
	assert.Equal(t, "198.51.100.1", ClientIP(req))
}

func TestEvictIdle(t *testing.T) {
	rl := newLimiter(10, time.Second, nil, nil)
	now := time.Now()
	rl.allowAt("a", now)
	rl.allowAt("b", now.Add(5*time.Second))

	rl.evictIdle(now.Add(5 * time.Second))
	assert.Equal(t, 1, rl.Stats().TrackedIPs)
}
