package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// WebSocketTransport carries MCP messages as JSON text frames over an
// accepted WebSocket connection. One transport serves one client connection;
// when the client goes away the serve loop ends and the transport is done.
type WebSocketTransport struct {
	conn   *websocket.Conn
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewWebSocketTransport wraps an accepted WebSocket connection.
func NewWebSocketTransport(conn *websocket.Conn, logger *zap.Logger) *WebSocketTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketTransport{
		conn:   conn,
		logger: logger.With(zap.String("component", "mcp_ws_transport")),
	}
}

// Send writes a JSON-RPC message as a text frame. Safe for concurrent
// callers; websocket.Conn serializes writers internally per frame.
func (t *WebSocketTransport) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrTransportClosed
	}

	if err := t.conn.Write(ctx, websocket.MessageText, body); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

// Receive reads the next JSON-RPC message. A normal peer close surfaces as
// ErrTransportClosed so the serve loop can exit cleanly.
func (t *WebSocketTransport) Receive(ctx context.Context) (*Message, error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, ErrTransportClosed
	}

	_, data, err := t.conn.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if websocket.CloseStatus(err) != -1 {
			return nil, ErrTransportClosed
		}
		return nil, fmt.Errorf("websocket read: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Close closes the underlying connection.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	return t.conn.Close(websocket.StatusNormalClosure, "closing")
}
