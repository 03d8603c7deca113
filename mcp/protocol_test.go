package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMessage_MarshalPinsVersion verifies the jsonrpc field is always "2.0"
// on the wire, even when the struct field was left empty.
func TestMessage_MarshalPinsVersion(t *testing.T) {
	msg := &Message{ID: 1, Method: "tools/list"}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2.0", decoded["jsonrpc"])
	assert.Equal(t, "tools/list", decoded["method"])
}

func TestToolDefinition_Validate(t *testing.T) {
	valid := &ToolDefinition{
		Name:        "generate_image",
		Description: "Generate an image",
		InputSchema: map[string]any{"type": "object"},
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name string
		tool ToolDefinition
		want string
	}{
		{"missing name", ToolDefinition{Description: "d", InputSchema: map[string]any{}}, "name is required"},
		{"missing description", ToolDefinition{Name: "t", InputSchema: map[string]any{}}, "description is required"},
		{"missing schema", ToolDefinition{Name: "t", Description: "d"}, "schema is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tool.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(42, ErrorCodeMethodNotFound, "method not found: nope", nil)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Equal(t, 42, resp.ID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrorCodeMethodNotFound, resp.Error.Code)
	assert.Nil(t, resp.Result)
}

func TestNewResponse_RoundTrip(t *testing.T) {
	resp := NewResponse("req-1", map[string]any{"ok": true})

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "req-1", decoded.ID)
	assert.Nil(t, decoded.Error)
}
