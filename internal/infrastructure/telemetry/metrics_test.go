package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesCounters(t *testing.T) {
	m := NewMetrics("thrift-mart")
	m.ViewIncrements.WithLabelValues("atomic", "ok").Inc()
	m.ActiveSessions.Set(2)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ViewIncrements.WithLabelValues("atomic", "ok")))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, m.Handler()(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `thrift_mart_view_increments_total{mode="atomic",result="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "thrift_mart_active_sessions 2")
}
