package ai

import "context"

// Request describes a single call to an external text-generation service.
type Request struct {
	// System sets the assistant's role instruction for the call.
	System string
	// Prompt is the user-facing request body.
	Prompt string
	// Temperature controls randomness, 0.0-1.0.
	Temperature float64
	// MaxOutputTokens caps the response length.
	MaxOutputTokens int32
}

// TextGenerator is the capability boundary to an external generative text
// service. Implementations own transport, authentication and retries; callers
// own prompt construction and response parsing.
type TextGenerator interface {
	GenerateText(ctx context.Context, req *Request) (string, error)
	Model() string
}
