package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/openai-image-mcp/mcp"
)

// Downloaded images are always written as PNG regardless of the source
// content type; there is no sniffing or re-encoding. Changing this would
// change the meaning of persisted filenames.
const savedExtension = ".png"

// timestampLayout names files generated without a caller-supplied filename,
// unique to the second.
const timestampLayout = "20060102_150405"

// filenamePrefix tags synthesized filenames.
const filenamePrefix = "dalle_"

// strippedExtensions are removed from a caller-supplied filename before the
// PNG extension is appended, so "art.png" does not become "art.png.png".
// Matching is case-sensitive.
var strippedExtensions = []string{".png", ".jpg", ".jpeg"}

// SaveParams are the inputs of save_generated_image.
type SaveParams struct {
	ImageURL string
	Filename string
	SavePath string
}

func (ts *Toolset) saveDefinition() *mcp.ToolDefinition {
	return &mcp.ToolDefinition{
		Name:        "save_generated_image",
		Description: "Download a generated image from its URL and save it to disk as a PNG file.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"image_url": map[string]any{
					"type":        "string",
					"description": "URL of the image to download",
				},
				"filename": map[string]any{
					"type":        "string",
					"description": "Filename without extension (default: timestamped name)",
				},
				"save_path": map[string]any{
					"type":        "string",
					"description": "Directory to save into; absolute, or relative to the project root (default: generated_images)",
				},
			},
			"required": []any{"image_url"},
		},
	}
}

func (ts *Toolset) handleSave(ctx context.Context, args map[string]any) (any, error) {
	params, err := parseSaveParams(args)
	if err != nil {
		return nil, err
	}
	return ts.Save(ctx, params), nil
}

func parseSaveParams(args map[string]any) (SaveParams, error) {
	var params SaveParams
	var err error
	if params.ImageURL, err = stringArg(args, "image_url"); err != nil {
		return params, err
	}
	if params.Filename, err = stringArg(args, "filename"); err != nil {
		return params, err
	}
	if params.SavePath, err = stringArg(args, "save_path"); err != nil {
		return params, err
	}
	return params, nil
}

// Save downloads the image and writes it to the resolved path. Any existing
// file at that path is overwritten without warning.
func (ts *Toolset) Save(ctx context.Context, params SaveParams) SaveResult {
	if params.ImageURL == "" {
		return SaveResult{Success: false, Error: "image_url is required"}
	}

	dir := ts.resolveDir(params.SavePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SaveResult{Success: false, Error: fmt.Sprintf("failed to create directory: %v", err)}
	}

	filename := ts.resolveFilename(params.Filename)
	filePath := filepath.Join(dir, filename)

	body, result := ts.download(ctx, params.ImageURL)
	if !result.Success {
		return result
	}

	if err := os.WriteFile(filePath, body, 0o644); err != nil {
		return SaveResult{Success: false, Error: fmt.Sprintf("failed to write image file: %v", err)}
	}

	if ts.observer != nil {
		ts.observer.ObserveImageSaved(int64(len(body)))
	}

	relPath := filePath
	if rel, err := filepath.Rel(ts.storage.Root, filePath); err == nil {
		relPath = rel
	}

	ts.logger.Info("image saved",
		zap.String("path", filePath),
		zap.Int("size_bytes", len(body)),
	)

	return SaveResult{
		Success:      true,
		FilePath:     filePath,
		RelativePath: relPath,
		Filename:     filename,
		SizeBytes:    int64(len(body)),
		Message:      fmt.Sprintf("Image saved to %s", relPath),
	}
}

// resolveDir maps the caller's save path to a directory: absolute paths are
// used as-is, relative paths resolve against the storage root, and an empty
// path falls back to the default directory under the root.
func (ts *Toolset) resolveDir(savePath string) string {
	switch {
	case savePath == "":
		return filepath.Join(ts.storage.Root, ts.storage.DefaultDir)
	case filepath.IsAbs(savePath):
		return savePath
	default:
		return filepath.Join(ts.storage.Root, savePath)
	}
}

// resolveFilename strips one trailing image extension from a caller-supplied
// name and appends ".png" unconditionally; an empty name synthesizes a
// timestamped one.
func (ts *Toolset) resolveFilename(name string) string {
	if name == "" {
		return filenamePrefix + ts.now().Format(timestampLayout) + savedExtension
	}
	for _, ext := range strippedExtensions {
		if strings.HasSuffix(name, ext) {
			name = strings.TrimSuffix(name, ext)
			break
		}
	}
	return name + savedExtension
}

// download fetches the image bytes. A non-200 status fails the save without
// writing anything.
func (ts *Toolset) download(ctx context.Context, url string) ([]byte, SaveResult) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, SaveResult{Success: false, Error: fmt.Sprintf("failed to download image: %v", err)}
	}

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return nil, SaveResult{Success: false, Error: fmt.Sprintf("failed to download image: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, SaveResult{Success: false, Error: fmt.Sprintf("failed to download image: HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, SaveResult{Success: false, Error: fmt.Sprintf("failed to download image: %v", err)}
	}

	return body, SaveResult{Success: true}
}
