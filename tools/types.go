package tools

// Parameters echoes the validated generation inputs back to the caller.
type Parameters struct {
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Style   string `json:"style"`
	Model   string `json:"model"`
}

// GenerateResult is the tagged result of generate_image.
type GenerateResult struct {
	Success       bool        `json:"success"`
	ImageURL      string      `json:"image_url,omitempty"`
	RevisedPrompt string      `json:"revised_prompt,omitempty"`
	Parameters    *Parameters `json:"parameters,omitempty"`
	Message       string      `json:"message,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// SaveResult is the tagged result of save_generated_image.
type SaveResult struct {
	Success      bool   `json:"success"`
	FilePath     string `json:"file_path,omitempty"`
	RelativePath string `json:"relative_path,omitempty"`
	Filename     string `json:"filename,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}

// GenerateAndSaveResult merges a generation result with a save result.
// A save failure after a successful generation is a partial success:
// Success stays true and SaveError carries the reason.
type GenerateAndSaveResult struct {
	Success       bool        `json:"success"`
	ImageURL      string      `json:"image_url,omitempty"`
	RevisedPrompt string      `json:"revised_prompt,omitempty"`
	Parameters    *Parameters `json:"parameters,omitempty"`
	FilePath      string      `json:"file_path,omitempty"`
	RelativePath  string      `json:"relative_path,omitempty"`
	Filename      string      `json:"filename,omitempty"`
	SizeBytes     int64       `json:"size_bytes,omitempty"`
	Message       string      `json:"message,omitempty"`
	SaveError     string      `json:"save_error,omitempty"`
	Error         string      `json:"error,omitempty"`
}
