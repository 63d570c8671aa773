package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"thriftmart/internal/adapter/web"
	ws "thriftmart/internal/infrastructure/websocket"
	"thriftmart/pkg/logger"
	"thriftmart/pkg/response"
)

type WebSocketHandler struct {
	ctx       context.Context
	wsManager *ws.Manager
	session   web.SessionConfig
	upgrader  gorillaws.Upgrader
}

// NewWebSocketHandler binds sessions to ctx rather than to the upgrade
// request, whose context ends when the handler returns.
func NewWebSocketHandler(ctx context.Context, wsManager *ws.Manager, session web.SessionConfig, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		ctx:       ctx,
		wsManager: wsManager,
		session:   session,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	filter, err := bindListingFilter(c)
	if err != nil {
		return response.Error(c, err)
	}

	// Upgrade has already answered the request when it fails.
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket: upgrade failed from %s: %v", c.RealIP(), err)
		return nil
	}

	client := ws.NewClient(uuid.New().String(), conn)
	session := web.NewSession(h.ctx, client, filter, h.session)

	if !h.wsManager.Add(client) {
		logger.Warn("WebSocket: manager stopped, rejecting client %s", client.ID)
		session.Close()
		conn.Close()
		return nil
	}

	go client.WritePump()
	session.Start()
	go client.ReadPump(h.wsManager)

	return nil
}
