package handler

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler("memory", nil)

	if assert.NoError(t, h.CheckHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Server is running")
	}
}

func TestStoreHealth(t *testing.T) {
	cases := []struct {
		name   string
		ping   PingFunc
		status int
		body   string
	}{
		{"no check", nil, http.StatusOK, "no health check"},
		{"healthy", func(ctx context.Context) error { return nil }, http.StatusOK, "connected successfully"},
		{"down", func(ctx context.Context) error { return stderrors.New("dial tcp: refused") }, http.StatusServiceUnavailable, "refused"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/health/store", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := NewHealthHandler("postgres", tc.ping)
			if assert.NoError(t, h.CheckStoreHealth(c)) {
				assert.Equal(t, tc.status, rec.Code)
				assert.Contains(t, rec.Body.String(), tc.body)
			}
		})
	}
}
