package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler exposes the MCP server over HTTP: a WebSocket endpoint, an SSE
// endpoint with a paired message POST endpoint, health, and Prometheus
// metrics.
type Handler struct {
	server *Server
	logger *zap.Logger

	// SSE client channels keyed by client id
	sseClients   map[string]chan []byte
	sseClientsMu sync.RWMutex
}

// NewHandler creates the HTTP handler for an MCP server.
func NewHandler(server *Server, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		server:     server,
		logger:     logger.With(zap.String("component", "mcp_http")),
		sseClients: make(map[string]chan []byte),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/mcp/ws":
		h.handleWebSocket(w, r)
	case "/mcp/sse":
		h.handleSSE(w, r)
	case "/mcp/message":
		h.handleMessage(w, r)
	case "/healthz":
		h.handleHealth(w, r)
	case "/metrics":
		promhttp.Handler().ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleWebSocket upgrades the connection and runs the serve loop on a
// per-connection transport until the client disconnects.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{"mcp"},
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}

	clientID := uuid.NewString()
	h.logger.Info("websocket client connected", zap.String("client_id", clientID))

	transport := NewWebSocketTransport(conn, h.logger)
	defer transport.Close()

	if err := h.server.Serve(r.Context(), transport); err != nil && r.Context().Err() == nil {
		h.logger.Warn("websocket serve ended",
			zap.String("client_id", clientID),
			zap.Error(err))
	}

	h.logger.Info("websocket client disconnected", zap.String("client_id", clientID))
}

// handleSSE holds the event stream open and forwards responses pushed for
// this client id.
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientID := uuid.NewString()
	ch := make(chan []byte, 100)

	h.sseClientsMu.Lock()
	h.sseClients[clientID] = ch
	h.sseClientsMu.Unlock()

	defer func() {
		h.sseClientsMu.Lock()
		delete(h.sseClients, clientID)
		h.sseClientsMu.Unlock()
		close(ch)
	}()

	// Tell the client where to POST its messages
	fmt.Fprintf(w, "event: endpoint\ndata: /mcp/message?clientId=%s\n\n", clientID)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// handleMessage accepts one JSON-RPC message per POST and replies inline,
// mirroring the response to the caller's SSE stream when a clientId is given.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		resp := NewErrorResponse(nil, ErrorCodeParseError, "parse error", nil)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	response, err := h.server.HandleMessage(r.Context(), &msg)
	if err != nil {
		response = NewErrorResponse(msg.ID, ErrorCodeInternalError, err.Error(), nil)
	}

	w.Header().Set("Content-Type", "application/json")
	if response == nil {
		// Notification: acknowledge with no body
		w.WriteHeader(http.StatusAccepted)
		return
	}
	json.NewEncoder(w).Encode(response)

	if clientID := r.URL.Query().Get("clientId"); clientID != "" {
		h.pushToSSEClient(clientID, response)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"name":    h.server.Info().Name,
		"version": h.server.Info().Version,
	})
}

// pushToSSEClient mirrors a response onto the client's event stream.
func (h *Handler) pushToSSEClient(clientID string, msg *Message) {
	h.sseClientsMu.RLock()
	ch, exists := h.sseClients[clientID]
	h.sseClientsMu.RUnlock()

	if !exists {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case ch <- data:
	default:
		h.logger.Warn("SSE client channel full", zap.String("client_id", clientID))
	}
}
