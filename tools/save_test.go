package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/openai-image-mcp/config"
)

func imageServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSave_Success(t *testing.T) {
	body := []byte("fake png bytes")
	srv := imageServer(t, body)
	root := t.TempDir()
	ts := New(testCreds(), okGenerator(), config.StorageConfig{Root: root, DefaultDir: "generated_images"}, zap.NewNop())

	result := ts.Save(context.Background(), SaveParams{ImageURL: srv.URL, Filename: "art"})

	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, "art.png", result.Filename)
	assert.Equal(t, int64(len(body)), result.SizeBytes)
	assert.Equal(t, filepath.Join(root, "generated_images", "art.png"), result.FilePath)
	assert.Equal(t, filepath.Join("generated_images", "art.png"), result.RelativePath)
	assert.Contains(t, result.Message, "Image saved to")

	written, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	assert.Equal(t, body, written)
}

func TestSave_MissingURL(t *testing.T) {
	ts := newToolset(t, okGenerator())

	result := ts.Save(context.Background(), SaveParams{})

	assert.False(t, result.Success)
	assert.Equal(t, "image_url is required", result.Error)
}

// TestSave_FilenameResolution covers the extension-stripping rules: one
// trailing image extension is removed before ".png" is appended, matching
// case-sensitively, so caller intent like "art.png" stays "art.png".
func TestSave_FilenameResolution(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"art", "art.png"},
		{"art.png", "art.png"},
		{"art.jpg", "art.png"},
		{"art.jpeg", "art.png"},
		{"art.PNG", "art.PNG.png"},
		{"art.tiff", "art.tiff.png"},
		{"art.png.png", "art.png.png"},
	}

	srv := imageServer(t, []byte("x"))
	for _, tc := range cases {
		ts := newToolset(t, okGenerator())
		result := ts.Save(context.Background(), SaveParams{ImageURL: srv.URL, Filename: tc.in})
		require.True(t, result.Success)
		assert.Equal(t, tc.want, result.Filename, "input %q", tc.in)
	}
}

func TestSave_TimestampedDefaultFilename(t *testing.T) {
	srv := imageServer(t, []byte("x"))
	fixed := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	ts := newToolset(t, okGenerator(), WithClock(func() time.Time { return fixed }))

	result := ts.Save(context.Background(), SaveParams{ImageURL: srv.URL})

	require.True(t, result.Success)
	assert.Equal(t, "dalle_20260831_143005.png", result.Filename)
	assert.Regexp(t, regexp.MustCompile(`^dalle_\d{8}_\d{6}\.png$`), result.Filename)
}

func TestSave_PathResolution(t *testing.T) {
	srv := imageServer(t, []byte("x"))
	root := t.TempDir()
	storage := config.StorageConfig{Root: root, DefaultDir: "generated_images"}
	ts := New(testCreds(), okGenerator(), storage, zap.NewNop())

	// Relative path joins the storage root.
	result := ts.Save(context.Background(), SaveParams{ImageURL: srv.URL, Filename: "a", SavePath: "out/nested"})
	require.True(t, result.Success)
	assert.Equal(t, filepath.Join(root, "out", "nested", "a.png"), result.FilePath)

	// Absolute path is used as-is.
	abs := t.TempDir()
	result = ts.Save(context.Background(), SaveParams{ImageURL: srv.URL, Filename: "b", SavePath: abs})
	require.True(t, result.Success)
	assert.Equal(t, filepath.Join(abs, "b.png"), result.FilePath)
}

func TestSave_OverwritesExistingFile(t *testing.T) {
	srv := imageServer(t, []byte("new bytes"))
	root := t.TempDir()
	ts := New(testCreds(), okGenerator(), config.StorageConfig{Root: root, DefaultDir: "generated_images"}, zap.NewNop())

	dir := filepath.Join(root, "generated_images")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	target := filepath.Join(dir, "art.png")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	result := ts.Save(context.Background(), SaveParams{ImageURL: srv.URL, Filename: "art"})

	require.True(t, result.Success)
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("new bytes"), written)
}

// TestSave_DownloadFailure verifies a non-200 download fails the save and
// leaves no file behind.
func TestSave_DownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	root := t.TempDir()
	ts := New(testCreds(), okGenerator(), config.StorageConfig{Root: root, DefaultDir: "generated_images"}, zap.NewNop())

	result := ts.Save(context.Background(), SaveParams{ImageURL: srv.URL, Filename: "art"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, fmt.Sprintf("HTTP %d", http.StatusNotFound))

	_, err := os.Stat(filepath.Join(root, "generated_images", "art.png"))
	assert.True(t, os.IsNotExist(err), "no file should be written on download failure")
}

type countingObserver struct {
	calls int
	bytes int64
}

func (c *countingObserver) ObserveImageSaved(n int64) {
	c.calls++
	c.bytes += n
}

func TestSave_NotifiesObserver(t *testing.T) {
	body := []byte("0123456789")
	srv := imageServer(t, body)
	obs := &countingObserver{}
	ts := newToolset(t, okGenerator(), WithSaveObserver(obs))

	result := ts.Save(context.Background(), SaveParams{ImageURL: srv.URL, Filename: "art"})

	require.True(t, result.Success)
	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, int64(len(body)), obs.bytes)
}

func TestHandleSave_ArgumentParsing(t *testing.T) {
	ts := newToolset(t, okGenerator())

	_, err := ts.handleSave(context.Background(), map[string]any{"image_url": []any{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"image_url"`)
}
