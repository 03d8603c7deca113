package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	s := NewServer("test-server", "0.0.1", zap.NewNop())
	def, handler := echoTool()
	require.NoError(t, s.RegisterTool(def, handler))
	return NewHandler(s, zap.NewNop())
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test-server", body["name"])
}

func TestHandler_Message_ToolsList(t *testing.T) {
	h := newTestHandler(t)

	payload, _ := json.Marshal(NewRequest(1, "tools/list", nil))
	req := httptest.NewRequest(http.MethodPost, "/mcp/message", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	tools, ok := result["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 1)
}

func TestHandler_Message_ParseError(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/mcp/message", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrorCodeParseError, resp.Error.Code)
}

func TestHandler_Message_RejectsGet(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/mcp/message", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_Message_NotificationAccepted(t *testing.T) {
	h := newTestHandler(t)

	payload, _ := json.Marshal(&Message{JSONRPC: "2.0", Method: "notifications/initialized"})
	req := httptest.NewRequest(http.MethodPost, "/mcp/message", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandler_UnknownPath(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Metrics(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_PushToSSEClient_UnknownClient(t *testing.T) {
	h := newTestHandler(t)

	// Pushing to a client that never connected must not panic or block.
	h.pushToSSEClient("no-such-client", NewResponse(1, map[string]any{}))
}

func TestHandler_Message_ToolsCall(t *testing.T) {
	h := newTestHandler(t)

	payload, _ := json.Marshal(NewRequest(7, "tools/call", map[string]any{
		"name":      "echo",
		"arguments": map[string]any{"prompt": "hi"},
	}))
	req := httptest.NewRequest(http.MethodPost, "/mcp/message", bytes.NewReader(payload))
	req = req.WithContext(context.Background())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hi", result["prompt"])
}
