// Package openaicompat provides a text generator backed by any
// OpenAI-compatible chat completion API.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ferrovax/mingle/internal/ai"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultModel = "gpt-3.5-turbo"

// Generator implements ai.TextGenerator over an OpenAI-compatible endpoint.
type Generator struct {
	client    llms.Model
	modelName string
}

// NewGenerator creates a generator for the given endpoint. An empty baseURL
// targets the public OpenAI API.
func NewGenerator(apiKey, baseURL, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	return &Generator{client: client, modelName: model}, nil
}

// GenerateText sends the request as a system+user message pair and returns
// the first choice's content.
func (g *Generator) GenerateText(ctx context.Context, req *ai.Request) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("openai generator is not initialized")
	}
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	content := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.Prompt)},
	})

	callOpts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxOutputTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(int(req.MaxOutputTokens)))
	}

	response, err := g.client.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(response.Choices) < 1 {
		return "", errors.New("openai api returned no choices")
	}

	output := strings.TrimSpace(response.Choices[0].Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
