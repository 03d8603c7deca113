package tools

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/openai-image-mcp/config"
	"github.com/BaSui01/openai-image-mcp/image"
	"github.com/BaSui01/openai-image-mcp/mcp"
)

// ImageGenerator is the slice of the image client the tools need.
type ImageGenerator interface {
	Generate(ctx context.Context, req *image.GenerateRequest) (*image.GenerateResponse, error)
}

// SaveObserver receives the size of every image written to disk.
type SaveObserver interface {
	ObserveImageSaved(sizeBytes int64)
}

// Toolset holds the shared dependencies of the three image tools. Credentials
// are resolved once at startup and injected here; each tool call is otherwise
// stateless.
type Toolset struct {
	creds      config.Credentials
	generator  ImageGenerator
	storage    config.StorageConfig
	httpClient *http.Client
	observer   SaveObserver
	logger     *zap.Logger
	now        func() time.Time
}

// Option customizes a Toolset.
type Option func(*Toolset)

// WithHTTPClient replaces the download client (tests).
func WithHTTPClient(c *http.Client) Option {
	return func(ts *Toolset) { ts.httpClient = c }
}

// WithSaveObserver installs a save-size observer (metrics).
func WithSaveObserver(obs SaveObserver) Option {
	return func(ts *Toolset) { ts.observer = obs }
}

// WithClock replaces the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(ts *Toolset) { ts.now = now }
}

// New creates the image toolset.
func New(creds config.Credentials, generator ImageGenerator, storage config.StorageConfig, logger *zap.Logger, opts ...Option) *Toolset {
	if logger == nil {
		logger = zap.NewNop()
	}
	ts := &Toolset{
		creds:     creds,
		generator: generator,
		storage:   storage,
		// No client timeout: downloads wait as long as the transport does.
		httpClient: &http.Client{},
		logger:     logger.With(zap.String("component", "image_tools")),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Register registers the three tools on the MCP server.
func (ts *Toolset) Register(srv *mcp.Server) error {
	for _, reg := range []struct {
		def     *mcp.ToolDefinition
		handler mcp.ToolHandler
	}{
		{ts.generateDefinition(), ts.handleGenerate},
		{ts.saveDefinition(), ts.handleSave},
		{ts.generateAndSaveDefinition(), ts.handleGenerateAndSave},
	} {
		if err := srv.RegisterTool(reg.def, reg.handler); err != nil {
			return fmt.Errorf("register %s: %w", reg.def.Name, err)
		}
	}
	return nil
}

// stringArg extracts an optional string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}
