package openaicompat

import (
	"context"
	"testing"
)

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator("  ", "", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestNewGeneratorDefaultsModel(t *testing.T) {
	t.Parallel()

	g, err := NewGenerator("test-key", "http://localhost:11434/v1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Model() != defaultModel {
		t.Fatalf("expected default model %q, got %q", defaultModel, g.Model())
	}
}

func TestGenerateTextRequiresPrompt(t *testing.T) {
	t.Parallel()

	g, err := NewGenerator("test-key", "", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := g.GenerateText(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil request")
	}
}
