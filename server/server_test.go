package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/timetext/internal/profile"
	"github.com/hrygo/timetext/plugin/timetext"
)

func newTestServer(t *testing.T, p *profile.Profile) *Server {
	t.Helper()
	require.NoError(t, p.Validate())
	cfg, err := p.Config()
	require.NoError(t, err)
	return NewServer(p, timetext.New(cfg), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t, &profile.Profile{Mode: "prod", StrictTimezone: true})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/format?value=0&preset=date", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"1970-01-01"}`, rec.Body.String())
}

func TestServer_RateLimit(t *testing.T) {
	s := newTestServer(t, &profile.Profile{RateLimit: 1, RateBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Real-IP", "192.0.2.7")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
