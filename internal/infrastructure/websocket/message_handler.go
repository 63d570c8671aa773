package websocket

import (
	"encoding/json"
	"time"

	"thriftmart/pkg/logger"
)

// WebSocket Message Types
const (
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeSetFilter = "set_filter"
	MessageTypeRefetch   = "refetch"
	MessageTypeView      = "view"
	MessageTypeState     = "state"
	MessageTypeToast     = "toast"
	MessageTypeError     = "error"
)

// WebSocket Message Structure
type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp"`
}

type outbound struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// Message Data Types
type SetFilterData struct {
	Query      string `json:"query"`
	CategoryID string `json:"category_id"`
}

type ViewData struct {
	ListingID string `json:"listing_id"`
}

type ErrorData struct {
	Error    string `json:"error"`
	ClientID string `json:"client_id"`
}

// DecodeData unmarshals the message payload into v.
func (m WSMessage) DecodeData(v interface{}) error {
	if len(m.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(m.Data, v)
}

// HandleClientMessage processes incoming WebSocket messages
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var wsMessage WSMessage

	if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
		logger.Warn("WebSocket: failed to unmarshal message from client %s: %v", client.ID, err)
		client.SendError("Invalid message format")
		return
	}

	logger.Debug("WebSocket: received message type '%s' from client %s", wsMessage.Type, client.ID)

	switch wsMessage.Type {
	case MessageTypePing:
		client.SendMessage(MessageTypePong, map[string]string{"status": "alive"})

	default:
		if client.Handler == nil {
			client.SendError("Unknown message type")
			return
		}
		client.Handler.HandleMessage(client, wsMessage)
	}
}

// SendMessage encodes and queues one server message.
func (c *Client) SendMessage(messageType string, data interface{}) bool {
	messageBytes, err := json.Marshal(outbound{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s message for client %s: %v", messageType, c.ID, err)
		return false
	}
	return c.enqueue(messageBytes)
}

func (c *Client) SendError(errorMsg string) bool {
	return c.SendMessage(MessageTypeError, ErrorData{Error: errorMsg, ClientID: c.ID})
}
