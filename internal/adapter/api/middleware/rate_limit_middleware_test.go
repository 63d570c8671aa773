package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"thriftmart/internal/infrastructure/ratelimit"
	"thriftmart/internal/infrastructure/telemetry"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return false, 0, stderrors.New("redis: connection refused")
}

func call(mw echo.MiddlewareFunc, ip string) *httptest.ResponseRecorder {
	return callFrom(mw, nil, ip+":40000", nil)
}

func callFrom(mw echo.MiddlewareFunc, trustedProxies []string, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	e.IPExtractor = ClientIPExtractor(trustedProxies)
	req := httptest.NewRequest(http.MethodPost, "/v1/listings/x/views", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})(c)
	return rec
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	metrics := telemetry.NewMetrics("rl-test")
	mw := RateLimit(ratelimit.NewMemoryLimiter(2, time.Minute), "views", metrics)

	assert.Equal(t, http.StatusNoContent, call(mw, "10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, call(mw, "10.0.0.1").Code)

	rec := call(mw, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "TOO_MANY_REQUESTS")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RateLimited.WithLabelValues("views")))

	assert.Equal(t, http.StatusNoContent, call(mw, "10.0.0.2").Code, "limits are per IP")
}

func TestRateLimitFailsOpen(t *testing.T) {
	mw := RateLimit(brokenLimiter{}, "views", nil)
	assert.Equal(t, http.StatusNoContent, call(mw, "10.0.0.3").Code)
}

func TestRateLimitIgnoresSpoofedForwardingHeaders(t *testing.T) {
	mw := RateLimit(ratelimit.NewMemoryLimiter(1, time.Minute), "views", nil)

	spoofed := []string{"198.51.100.1", "198.51.100.2", "198.51.100.3", "198.51.100.4"}
	codes := []int{}
	for _, ip := range spoofed {
		rec := callFrom(mw, nil, "203.0.113.7:5555", map[string]string{
			echo.HeaderXForwardedFor: ip,
			echo.HeaderXRealIP:       ip,
		})
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{
		http.StatusNoContent,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestRateLimitTrustsForwardedForFromConfiguredProxy(t *testing.T) {
	mw := RateLimit(ratelimit.NewMemoryLimiter(1, time.Minute), "views", nil)
	trusted := []string{"10.0.0.0/8"}

	viaProxy := func(client string) int {
		return callFrom(mw, trusted, "10.1.2.3:8080", map[string]string{echo.HeaderXForwardedFor: client}).Code
	}
	assert.Equal(t, http.StatusNoContent, viaProxy("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, viaProxy("198.51.100.1"))
	assert.Equal(t, http.StatusNoContent, viaProxy("198.51.100.2"), "distinct clients behind the proxy")

	// an untrusted peer cannot pick its key through the header
	direct := func(client string) int {
		return callFrom(mw, trusted, "203.0.113.9:1000", map[string]string{echo.HeaderXForwardedFor: client}).Code
	}
	assert.Equal(t, http.StatusNoContent, direct("198.51.100.50"))
	assert.Equal(t, http.StatusTooManyRequests, direct("198.51.100.51"))
}

func TestClientIPExtractorSkipsInvalidRanges(t *testing.T) {
	extract := ClientIPExtractor([]string{"garbage"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set(echo.HeaderXForwardedFor, "198.51.100.1")
	assert.Equal(t, "203.0.113.7", extract(req))
}

func TestRetrySeconds(t *testing.T) {
	assert.Equal(t, 1, retrySeconds(0))
	assert.Equal(t, 1, retrySeconds(300*time.Millisecond))
	assert.Equal(t, 3, retrySeconds(2100*time.Millisecond))
}
