package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowPerKey(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "burst exhausted")

	assert.True(t, rl.Allow("b"), "keys have independent buckets")
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("a"))
	}
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	require.True(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"))
	assert.False(t, rl.Allow("a"))
	assert.Equal(t, 2, rl.Len())

	now = now.Add(minIdle - time.Second)
	require.True(t, rl.Allow("b"))
	assert.Equal(t, 2, rl.Len())

	now = now.Add(time.Second)
	require.True(t, rl.Allow("c"))
	assert.Equal(t, 2, rl.Len(), "a was idle and is dropped")

	now = now.Add(minIdle)
	require.True(t, rl.Allow("c"))
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_IdleCoversRefill(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	assert.InDelta(t, 1000, rl.idle.Seconds(), 0.001)
	assert.Equal(t, minIdle, NewRateLimiter(5, 10).idle)
}

func TestRateLimiter_Middleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 1)
	e.Use(rl.Middleware())
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	rec := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}
