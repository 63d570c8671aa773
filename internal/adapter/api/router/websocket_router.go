package router

import (
	"github.com/labstack/echo/v4"

	"thriftmart/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	if wsHandler == nil {
		return
	}
	e.GET("/ws", wsHandler.HandleWebSocket)
}
