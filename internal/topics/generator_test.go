package topics

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ferrovax/mingle/internal/ai"
	"github.com/ferrovax/mingle/internal/roster"

	"go.uber.org/zap"
)

type stubGenerator struct {
	mu         sync.Mutex
	response   string
	err        error
	lastPrompt string
	lastReq    *ai.Request
	calls      int
}

func (s *stubGenerator) GenerateText(_ context.Context, req *ai.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastPrompt = req.Prompt
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestGenerateBuildsPromptFromAnswers(t *testing.T) {
	stub := &stubGenerator{response: "Topic one\nTopic two\nTopic three"}
	gen := NewGenerator(stub, Config{}, zap.NewNop())

	profile := &roster.Profile{
		APIID:       "a1",
		Name:        "Alice",
		WhatToLearn: "woodworking",
		ProudOf:     "built a canoe",
	}

	topics, err := gen.Generate(context.Background(), profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(topics, []string{"Topic one", "Topic two", "Topic three"}) {
		t.Fatalf("unexpected topics: %v", topics)
	}

	if !strings.Contains(stub.lastPrompt, "interested in woodworking") {
		t.Fatalf("expected interest in prompt, got: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "built a canoe") {
		t.Fatalf("expected accomplishment in prompt, got: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "Generate 3 general discussion topics") {
		t.Fatalf("expected topic count in prompt, got: %s", stub.lastPrompt)
	}

	if stub.lastReq.System != systemInstruction {
		t.Fatalf("unexpected system instruction: %q", stub.lastReq.System)
	}
	if stub.lastReq.Temperature != defaultTemperature {
		t.Fatalf("unexpected temperature: %v", stub.lastReq.Temperature)
	}
	if stub.lastReq.MaxOutputTokens != defaultMaxOutputTokens {
		t.Fatalf("unexpected token cap: %v", stub.lastReq.MaxOutputTokens)
	}
}

func TestGenerateFallsBackForBlankAnswers(t *testing.T) {
	stub := &stubGenerator{response: "A topic"}
	gen := NewGenerator(stub, Config{}, zap.NewNop())

	profile := &roster.Profile{APIID: "a1", Name: "Alice"}

	topics, err := gen.Generate(context.Background(), profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %v", topics)
	}

	if !strings.Contains(stub.lastPrompt, fallbackInterest) {
		t.Fatalf("expected interest fallback, got: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, fallbackAccomplishment) {
		t.Fatalf("expected accomplishment fallback, got: %s", stub.lastPrompt)
	}
}

func TestParseTopics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "newline separated",
			input:  "1. Canoe craft\n2. Workshop tools\n3. Wood species",
			expect: []string{"Canoe craft", "Workshop tools", "Wood species"},
		},
		{
			name:   "sentence punctuation",
			input:  "Canoe craft. Workshop tools. Wood species.",
			expect: []string{"Canoe craft", "Workshop tools", "Wood species"},
		},
		{
			name:   "no separators at all",
			input:  "  Canoe craft  ",
			expect: []string{"Canoe craft"},
		},
		{
			name:   "blank response",
			input:  "   \n  ",
			expect: []string{},
		},
		{
			name:   "bulleted list",
			input:  "- Canoe craft\n* Workshop tools\n• Wood species",
			expect: []string{"Canoe craft", "Workshop tools", "Wood species"},
		},
		{
			name:   "empty fragments dropped",
			input:  "Canoe craft..\n\nWorkshop tools",
			expect: []string{"Canoe craft..", "Workshop tools"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseTopics(tt.input); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestGenerateAllIsolatesFailures(t *testing.T) {
	stub := &stubGenerator{err: errors.New("service unavailable")}
	gen := NewGenerator(stub, Config{}, zap.NewNop())

	batch := &roster.Batch{Profiles: []*roster.Profile{
		{APIID: "a1", Name: "Alice"},
		{APIID: "b2", Name: "Bob"},
	}}

	failures := gen.GenerateAll(context.Background(), batch, 2)

	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}

	for _, profile := range batch.Profiles {
		if profile.DiscussionTopics == nil || len(profile.DiscussionTopics) != 0 {
			t.Fatalf("expected empty topics for %s, got %v", profile.APIID, profile.DiscussionTopics)
		}
	}
}

func TestGenerateAllPreservesOrder(t *testing.T) {
	stub := &stubGenerator{response: "Shared topic"}
	gen := NewGenerator(stub, Config{}, zap.NewNop())

	batch := &roster.Batch{Profiles: []*roster.Profile{
		{APIID: "a1", Name: "Alice"},
		{APIID: "b2", Name: "Bob"},
		{APIID: "c3", Name: "Cara"},
	}}

	failures := gen.GenerateAll(context.Background(), batch, 3)

	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %v", failures)
	}

	if stub.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", stub.calls)
	}

	want := []string{"a1", "b2", "c3"}
	for i, profile := range batch.Profiles {
		if profile.APIID != want[i] {
			t.Fatalf("batch order changed: got %s at %d", profile.APIID, i)
		}
		if len(profile.DiscussionTopics) != 1 {
			t.Fatalf("expected topics for %s, got %v", profile.APIID, profile.DiscussionTopics)
		}
	}
}
