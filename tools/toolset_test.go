package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/openai-image-mcp/mcp"
)

func TestRegister_ExposesAllTools(t *testing.T) {
	ts := newToolset(t, okGenerator())
	srv := mcp.NewServer("test", "0.0.0", zap.NewNop())

	require.NoError(t, ts.Register(srv))

	defs, err := srv.ListTools(context.Background())
	require.NoError(t, err)

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{
		"generate_and_save_image",
		"generate_image",
		"save_generated_image",
	}, names)
}

// TestRegister_CallThroughServer drives generate_image through the protocol
// server's tool dispatch, the path stdio and WebSocket clients hit.
func TestRegister_CallThroughServer(t *testing.T) {
	ts := newToolset(t, okGenerator())
	srv := mcp.NewServer("test", "0.0.0", zap.NewNop())
	require.NoError(t, ts.Register(srv))

	raw, err := srv.CallTool(context.Background(), "generate_image", map[string]any{"prompt": "a cat"})
	require.NoError(t, err)

	result, ok := raw.(GenerateResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, "https://cdn.example/img.png", result.ImageURL)
}
