package router

import (
	"github.com/labstack/echo/v4"

	"thriftmart/internal/adapter/api/handler"
	"thriftmart/internal/infrastructure/telemetry"
)

func Setup(e *echo.Echo, viewRateLimit echo.MiddlewareFunc, wsHandler *handler.WebSocketHandler, metrics *telemetry.Metrics) {
	SetupStorefrontRouter(e, viewRateLimit)
	SetupHealthRouter(e)
	SetupWebSocketRouter(e, wsHandler)
	SetupMetricsRouter(e, metrics)
}

func SetupMetricsRouter(e *echo.Echo, metrics *telemetry.Metrics) {
	if metrics == nil {
		return
	}
	e.GET("/metrics", metrics.Handler())
}
