package image

import "strings"

// Generation failure messages surfaced to the agent host.
const (
	msgAuthFailed   = "API key authentication failed. Please check your OpenAI API key."
	msgRateLimited  = "Rate limit exceeded. Please wait before trying again."
	msgQuotaExhaust = "API quota exceeded. Please check your OpenAI account billing."
)

// ClassifyError maps a generation error to a human-readable message by
// case-insensitive substring matching against the error text, in priority
// order: api_key, rate_limit, quota, then a generic fallback embedding the
// original message.
//
// This is a best-effort compatibility shim: the raw HTTP error carries no
// structured code, so a change in the remote service's message text can
// misclassify. Do not copy this pattern where a structured code is available.
func ClassifyError(err error) string {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "api_key"):
		return msgAuthFailed
	case strings.Contains(lower, "rate_limit"):
		return msgRateLimited
	case strings.Contains(lower, "quota"):
		return msgQuotaExhaust
	default:
		return "Failed to generate image: " + msg
	}
}
