package topics

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/ferrovax/mingle/internal/ai"
	"github.com/ferrovax/mingle/internal/roster"
	"github.com/ferrovax/mingle/internal/utils"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const (
	systemInstruction = "You are a helpful assistant that generates discussion topics."

	// Documented fallbacks for blank intake answers. The call still happens;
	// the service just gets a generic subject to riff on.
	fallbackInterest       = "general interests"
	fallbackAccomplishment = "something recent they did"

	defaultCount           = 3
	defaultTemperature     = 0.7
	defaultMaxOutputTokens = 100
	defaultMaxLogLength    = 200
)

// Config holds the per-run generation settings.
type Config struct {
	// Count is the number of topics the prompt asks for. The service may
	// still return fewer or more; the parser keeps whatever survives.
	Count           int
	Temperature     float64
	MaxOutputTokens int32
	MaxLogLength    int
}

// Generator derives discussion-starter topics for a single attendee through
// an injected text-generation capability.
type Generator struct {
	generator ai.TextGenerator
	config    Config
	logger    *zap.Logger
}

func NewGenerator(generator ai.TextGenerator, cfg Config, logger *zap.Logger) *Generator {
	if cfg.Count <= 0 {
		cfg.Count = defaultCount
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		generator: generator,
		config:    cfg,
		logger:    logger,
	}
}

// Generate produces an ordered list of topic phrases for the profile. The
// returned slice is never nil; a blank service response yields an empty list.
func (g *Generator) Generate(ctx context.Context, profile *roster.Profile) ([]string, error) {
	prompt := g.buildPrompt(profile)

	g.logger.Debug("topic generation request",
		zap.String("attendee_id", profile.APIID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.config.MaxLogLength)),
	)

	raw, err := g.generator.GenerateText(ctx, &ai.Request{
		System:          systemInstruction,
		Prompt:          prompt,
		Temperature:     g.config.Temperature,
		MaxOutputTokens: g.config.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	g.logger.Debug("topic generation response",
		zap.String("attendee_id", profile.APIID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, g.config.MaxLogLength)),
	)

	return ParseTopics(raw), nil
}

func (g *Generator) buildPrompt(profile *roster.Profile) string {
	interest := strings.TrimSpace(profile.WhatToLearn)
	if interest == "" {
		interest = fallbackInterest
	}

	accomplishment := strings.TrimSpace(profile.ProudOf)
	if accomplishment == "" {
		accomplishment = fallbackAccomplishment
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{COUNT}}", strconv.Itoa(g.config.Count))
	prompt = strings.ReplaceAll(prompt, "{{INTEREST}}", interest)
	prompt = strings.ReplaceAll(prompt, "{{ACCOMPLISHMENT}}", accomplishment)
	return strings.TrimSpace(prompt)
}

// ParseTopics splits a free-text service response into discrete topic
// phrases. Newlines win when present, otherwise sentence-terminal
// punctuation; fragments are trimmed, list markers stripped, and blanks
// dropped. It never fails on unexpected shapes.
func ParseTopics(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var fragments []string
	if strings.Contains(raw, "\n") {
		fragments = strings.Split(raw, "\n")
	} else {
		fragments = strings.FieldsFunc(raw, func(r rune) bool {
			return r == '.' || r == '!' || r == '?'
		})
	}

	topics := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		topic := stripListMarker(strings.TrimSpace(fragment))
		if topic == "" {
			continue
		}
		topics = append(topics, topic)
	}

	return topics
}

// stripListMarker removes a leading "1.", "2)", "-", "*" or bullet from a
// fragment, since models often return numbered or bulleted lists.
func stripListMarker(s string) string {
	trimmed := strings.TrimLeft(s, "-*• \t")

	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i > 0 && i < len(trimmed) && (trimmed[i] == '.' || trimmed[i] == ')') {
		trimmed = trimmed[i+1:]
	}

	return strings.TrimSpace(trimmed)
}
