package ai

import "context"

// TextGenerator generates text from a system prompt and user prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// VisionGenerator generates text from a prompt plus an inline image.
// The image is raw bytes with its MIME type, not a URL.
type VisionGenerator interface {
	GenerateFromImage(ctx context.Context, systemPrompt, userPrompt, mimeType string, image []byte) (string, error)
}
