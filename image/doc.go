// Package image provides the DALL-E image generation client, request
// validation, and best-effort error classification for the image tools.
package image
