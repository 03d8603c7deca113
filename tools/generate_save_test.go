package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/openai-image-mcp/config"
	"github.com/BaSui01/openai-image-mcp/image"
)

// cdnGenerator returns a generator whose single image URL points at the
// given server, mimicking the generate-then-download flow end to end.
func cdnGenerator(url string) *fakeGenerator {
	return &fakeGenerator{
		response: &image.GenerateResponse{
			Model: "dall-e-3",
			Images: []image.ImageData{
				{URL: url, RevisedPrompt: "a fluffy cat"},
			},
		},
	}
}

func TestGenerateAndSave_Success(t *testing.T) {
	body := []byte("fake png bytes")
	srv := imageServer(t, body)
	root := t.TempDir()
	gen := cdnGenerator(srv.URL)
	ts := New(testCreds(), gen, config.StorageConfig{Root: root, DefaultDir: "generated_images"}, zap.NewNop())

	result := ts.GenerateAndSave(context.Background(), GenerateParams{Prompt: "a cat"}, "art", "")

	require.True(t, result.Success, "error: %s / save_error: %s", result.Error, result.SaveError)
	assert.Equal(t, srv.URL, result.ImageURL)
	assert.Equal(t, "a fluffy cat", result.RevisedPrompt)
	assert.Equal(t, int64(len(body)), result.SizeBytes)
	assert.True(t, strings.HasSuffix(result.FilePath, ".png"))
	assert.Empty(t, result.Error)
	assert.Empty(t, result.SaveError)

	require.NotNil(t, result.Parameters)
	assert.Equal(t, "1024x1024", result.Parameters.Size)

	written, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	assert.Equal(t, body, written)
}

// TestGenerateAndSave_GenerationFailure verifies a failed generation is
// reported verbatim and no download is attempted.
func TestGenerateAndSave_GenerationFailure(t *testing.T) {
	var downloads atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		downloads.Add(1)
		w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	gen := &fakeGenerator{err: errors.New("rate_limit hit")}
	ts := newToolset(t, gen)

	result := ts.GenerateAndSave(context.Background(), GenerateParams{Prompt: "a cat"}, "", "")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Rate limit exceeded")
	assert.Empty(t, result.ImageURL)
	assert.Empty(t, result.SaveError)
	assert.Zero(t, downloads.Load())
}

// TestGenerateAndSave_PartialSuccess verifies the partial-success contract:
// when the download fails after a successful generation, Success stays true,
// the URL and parameters survive, SaveError is populated, and no file is
// written.
func TestGenerateAndSave_PartialSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	root := t.TempDir()
	gen := cdnGenerator(srv.URL)
	ts := New(testCreds(), gen, config.StorageConfig{Root: root, DefaultDir: "generated_images"}, zap.NewNop())

	result := ts.GenerateAndSave(context.Background(), GenerateParams{Prompt: "a cat"}, "art", "")

	assert.True(t, result.Success)
	assert.Equal(t, srv.URL, result.ImageURL)
	require.NotNil(t, result.Parameters)
	assert.Contains(t, result.SaveError, "HTTP 500")
	assert.Equal(t, msgGeneratedNotSaved, result.Message)
	assert.Empty(t, result.FilePath)
	assert.Empty(t, result.Error)

	_, err := os.Stat(filepath.Join(root, "generated_images", "art.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateAndSave_ValidationFailure(t *testing.T) {
	gen := okGenerator()
	ts := newToolset(t, gen)

	result := ts.GenerateAndSave(context.Background(), GenerateParams{Prompt: "a cat", Size: "640x480"}, "", "")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Invalid size")
	assert.Zero(t, gen.calls)
}

func TestHandleGenerateAndSave_ArgumentParsing(t *testing.T) {
	srv := imageServer(t, []byte("x"))
	ts := New(testCreds(), cdnGenerator(srv.URL), testStorage(t), zap.NewNop())

	_, err := ts.handleGenerateAndSave(context.Background(), map[string]any{"prompt": "cat", "filename": 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"filename"`)

	raw, err := ts.handleGenerateAndSave(context.Background(), map[string]any{"prompt": "cat", "filename": "art"})
	require.NoError(t, err)
	result, ok := raw.(GenerateAndSaveResult)
	require.True(t, ok)
	assert.True(t, result.Success)
}
