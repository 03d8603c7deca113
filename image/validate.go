package image

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxPromptLength is the DALL-E 3 prompt limit in characters.
const MaxPromptLength = 4000

// ValidSizes are the image dimensions DALL-E 3 accepts.
var ValidSizes = []string{"1024x1024", "1792x1024", "1024x1792"}

// ValidQualities are the quality levels DALL-E 3 accepts.
var ValidQualities = []string{"standard", "hd"}

// ValidStyles are the styles DALL-E 3 accepts.
var ValidStyles = []string{"vivid", "natural"}

// ApplyDefaults fills unset optional parameters with their DALL-E 3 defaults.
func ApplyDefaults(req *GenerateRequest) {
	if req.Size == "" {
		req.Size = "1024x1024"
	}
	if req.Quality == "" {
		req.Quality = "standard"
	}
	if req.Style == "" {
		req.Style = "vivid"
	}
	if req.Model == "" {
		req.Model = "dall-e-3"
	}
}

// Validate checks a generation request against the DALL-E 3 parameter sets.
// It is pure: no I/O, no mutation. The first violation wins, checked in the
// order size, quality, style, prompt length.
func Validate(req *GenerateRequest) error {
	if !contains(ValidSizes, req.Size) {
		return fmt.Errorf("Invalid size. Must be one of: %s", strings.Join(ValidSizes, ", "))
	}
	if !contains(ValidQualities, req.Quality) {
		return fmt.Errorf("Invalid quality. Must be one of: %s", strings.Join(ValidQualities, ", "))
	}
	if !contains(ValidStyles, req.Style) {
		return fmt.Errorf("Invalid style. Must be one of: %s", strings.Join(ValidStyles, ", "))
	}
	if utf8.RuneCountInString(req.Prompt) > MaxPromptLength {
		return fmt.Errorf("Prompt too long. Maximum %d characters for DALL-E 3.", MaxPromptLength)
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
