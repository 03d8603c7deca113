package tools

import (
	"context"

	"github.com/BaSui01/openai-image-mcp/mcp"
)

const msgGeneratedNotSaved = "Image was generated but could not be saved locally. The URL is still valid for about 1 hour."

func (ts *Toolset) generateAndSaveDefinition() *mcp.ToolDefinition {
	return &mcp.ToolDefinition{
		Name:        "generate_and_save_image",
		Description: "Generate an image using OpenAI's DALL-E 3 and save it to disk as a PNG file in one step.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt": map[string]any{
					"type":        "string",
					"description": "Text description of the image to generate (max 4000 chars)",
				},
				"size": map[string]any{
					"type":        "string",
					"enum":        []any{"1024x1024", "1792x1024", "1024x1792"},
					"description": "Image dimensions",
				},
				"quality": map[string]any{
					"type":        "string",
					"enum":        []any{"standard", "hd"},
					"description": "standard (faster, lower cost) or hd (higher quality, slower)",
				},
				"style": map[string]any{
					"type":        "string",
					"enum":        []any{"vivid", "natural"},
					"description": "vivid (dramatic, hyper-real) or natural (more natural, less stylized)",
				},
				"model": map[string]any{
					"type":        "string",
					"description": "Model identifier (default dall-e-3)",
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
			"required": []any{"prompt"},
		},
	}
}

func (ts *Toolset) handleGenerateAndSave(ctx context.Context, args map[string]any) (any, error) {
	genParams, err := parseGenerateParams(args)
	if err != nil {
		return nil, err
	}
	filename, err := stringArg(args, "filename")
	if err != nil {
		return nil, err
	}
	savePath, err := stringArg(args, "save_path")
	if err != nil {
		return nil, err
	}
	return ts.GenerateAndSave(ctx, genParams, filename, savePath), nil
}

// GenerateAndSave runs generation then save, strictly in sequence. A
// generation failure is returned verbatim with no save attempted; a save
// failure after a successful generation degrades to a partial success that
// keeps the remote URL and reports the save error alongside it.
func (ts *Toolset) GenerateAndSave(ctx context.Context, genParams GenerateParams, filename, savePath string) GenerateAndSaveResult {
	gen := ts.Generate(ctx, genParams)
	if !gen.Success {
		return GenerateAndSaveResult{Success: false, Error: gen.Error}
	}

	save := ts.Save(ctx, SaveParams{
		ImageURL: gen.ImageURL,
		Filename: filename,
		SavePath: savePath,
	})
	if !save.Success {
		return GenerateAndSaveResult{
			Success:       true,
			ImageURL:      gen.ImageURL,
			RevisedPrompt: gen.RevisedPrompt,
			Parameters:    gen.Parameters,
			Message:       msgGeneratedNotSaved,
			SaveError:     save.Error,
		}
	}

	return GenerateAndSaveResult{
		Success:       true,
		ImageURL:      gen.ImageURL,
		RevisedPrompt: gen.RevisedPrompt,
		Parameters:    gen.Parameters,
		FilePath:      save.FilePath,
		RelativePath:  save.RelativePath,
		Filename:      save.Filename,
		SizeBytes:     save.SizeBytes,
		Message:       save.Message,
	}
}
