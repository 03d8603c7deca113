package tools

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/openai-image-mcp/image"
	"github.com/BaSui01/openai-image-mcp/mcp"
)

const (
	msgMissingCredentials = "Missing OpenAI API credentials. Please set OPENAI_API_KEY environment variable."
	msgGenerated          = "Image generated successfully. The URL will expire after 1 hour."
)

// GenerateParams are the inputs of generate_image.
type GenerateParams struct {
	Prompt  string
	Size    string
	Quality string
	Style   string
	Model   string
}

func (ts *Toolset) generateDefinition() *mcp.ToolDefinition {
	return &mcp.ToolDefinition{
		Name:        "generate_image",
		Description: "Generate an image using OpenAI's DALL-E 3 from a text prompt. Returns a time-limited URL to the generated image plus the revised prompt.",
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
			},
			"required": []any{"prompt"},
		},
	}
}

func (ts *Toolset) handleGenerate(ctx context.Context, args map[string]any) (any, error) {
	params, err := parseGenerateParams(args)
	if err != nil {
		return nil, err
	}
	return ts.Generate(ctx, params), nil
}

func parseGenerateParams(args map[string]any) (GenerateParams, error) {
	var params GenerateParams
	var err error
	if params.Prompt, err = stringArg(args, "prompt"); err != nil {
		return params, err
	}
	if params.Size, err = stringArg(args, "size"); err != nil {
		return params, err
	}
	if params.Quality, err = stringArg(args, "quality"); err != nil {
		return params, err
	}
	if params.Style, err = stringArg(args, "style"); err != nil {
		return params, err
	}
	if params.Model, err = stringArg(args, "model"); err != nil {
		return params, err
	}
	return params, nil
}

// Generate validates the request and issues one generation call. Credentials
// are checked before any other validation, and no network call is made until
// every check has passed.
func (ts *Toolset) Generate(ctx context.Context, params GenerateParams) GenerateResult {
	if !ts.creds.Present() {
		return GenerateResult{Success: false, Error: msgMissingCredentials}
	}

	req := &image.GenerateRequest{
		Prompt:  params.Prompt,
		Size:    params.Size,
		Quality: params.Quality,
		Style:   params.Style,
		Model:   params.Model,
	}
	image.ApplyDefaults(req)

	if err := image.Validate(req); err != nil {
		return GenerateResult{Success: false, Error: err.Error()}
	}

	// DALL-E 3 only supports n=1; URLs, not inline image bytes.
	req.N = 1
	req.ResponseFormat = "url"

	resp, err := ts.generator.Generate(ctx, req)
	if err != nil {
		ts.logger.Warn("image generation failed", zap.Error(err))
		return GenerateResult{Success: false, Error: image.ClassifyError(err)}
	}

	if len(resp.Images) == 0 {
		return GenerateResult{Success: false, Error: "Failed to generate image: empty response from service"}
	}

	img := resp.Images[0]
	ts.logger.Info("image generated",
		zap.String("model", req.Model),
		zap.String("size", req.Size),
	)

	return GenerateResult{
		Success:       true,
		ImageURL:      img.URL,
		RevisedPrompt: img.RevisedPrompt,
		Parameters: &Parameters{
			Size:    req.Size,
			Quality: req.Quality,
			Style:   req.Style,
			Model:   req.Model,
		},
		Message: msgGenerated,
	}
}
