package matching

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ferrovax/mingle/internal/roster"

	"go.uber.org/zap"
)

type fixedScorer struct {
	score int
	err   error
}

func (s *fixedScorer) Score(_, _ *roster.Profile) (int, error) {
	return s.score, s.err
}

func testBatch() *roster.Batch {
	return &roster.Batch{Profiles: []*roster.Profile{
		{APIID: "a1", Name: "Alice"},
		{APIID: "b2", Name: "Bob"},
		{APIID: "c3", Name: "Cara"},
	}}
}

func TestScoreAllSelfAndCount(t *testing.T) {
	t.Parallel()

	batch := testBatch()
	engine := NewEngine(NewRandomScorer(42), zap.NewNop())

	failures := engine.ScoreAll(batch)
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %v", failures)
	}

	for _, profile := range batch.Profiles {
		if len(profile.Scores) != batch.Len() {
			t.Fatalf("expected %d entries for %s, got %d", batch.Len(), profile.APIID, len(profile.Scores))
		}

		if profile.Scores[profile.APIID] != SelfScore {
			t.Fatalf("expected self score %d for %s, got %d", SelfScore, profile.APIID, profile.Scores[profile.APIID])
		}

		for peer, score := range profile.Scores {
			if peer == profile.APIID {
				continue
			}
			if score < 0 || score > SelfScore {
				t.Fatalf("score out of range for %s->%s: %d", profile.APIID, peer, score)
			}
		}
	}
}

func TestScoreAllDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	first := testBatch()
	NewEngine(NewRandomScorer(7), zap.NewNop()).ScoreAll(first)

	second := testBatch()
	NewEngine(NewRandomScorer(7), zap.NewNop()).ScoreAll(second)

	for i := range first.Profiles {
		if !reflect.DeepEqual(first.Profiles[i].Scores, second.Profiles[i].Scores) {
			t.Fatalf("expected identical matrices for fixed seed, got %v vs %v",
				first.Profiles[i].Scores, second.Profiles[i].Scores)
		}
	}
}

func TestScoreAllClampsPolicyOutput(t *testing.T) {
	t.Parallel()

	batch := testBatch()
	engine := NewEngine(&fixedScorer{score: 250}, zap.NewNop())
	engine.ScoreAll(batch)

	if got := batch.Profiles[0].Scores["b2"]; got != SelfScore {
		t.Fatalf("expected clamp to %d, got %d", SelfScore, got)
	}
}

func TestScoreAllRecordsSentinelOnFailure(t *testing.T) {
	t.Parallel()

	batch := testBatch()
	engine := NewEngine(&fixedScorer{err: errors.New("scoring backend down")}, zap.NewNop())

	failures := engine.ScoreAll(batch)

	// Every ordered non-self pair fails: n*(n-1).
	if len(failures) != 6 {
		t.Fatalf("expected 6 failures, got %d", len(failures))
	}

	for _, profile := range batch.Profiles {
		if len(profile.Scores) != batch.Len() {
			t.Fatalf("sentinel entries must keep the map complete, got %d", len(profile.Scores))
		}
		if profile.Scores[profile.APIID] != SelfScore {
			t.Fatalf("self score must not fail")
		}
		for peer, score := range profile.Scores {
			if peer != profile.APIID && score != FailedScore {
				t.Fatalf("expected sentinel for %s->%s, got %d", profile.APIID, peer, score)
			}
		}
	}
}
