// Package matching computes the pairwise compatibility matrix over a batch of
// approved attendees.
package matching

import (
	"math/rand"
	"time"

	"github.com/ferrovax/mingle/internal/roster"
)

const (
	// SelfScore is the fixed maximum affinity every attendee has with
	// themselves. It is assigned without consulting the scoring policy.
	SelfScore = 100

	// FailedScore marks a pair whose computation failed. Keeping a sentinel
	// instead of dropping the entry preserves the one-entry-per-batch-member
	// shape of every score map.
	FailedScore = -1
)

// Scorer is the pluggable compatibility policy. Score returns a whole number
// in [0, 100] for an ordered pair of distinct attendees. Implementations may
// be asymmetric; the engine does not deduplicate ordered pairs.
type Scorer interface {
	Score(a, b *roster.Profile) (int, error)
}

// RandomScorer is the baseline placeholder policy: a uniform draw with no
// semantic grounding. A content-similarity policy can replace it without
// touching the engine.
type RandomScorer struct {
	rng *rand.Rand
}

// NewRandomScorer creates the baseline scorer. A non-zero seed makes runs
// reproducible; seed 0 seeds from the current time.
func NewRandomScorer(seed int64) *RandomScorer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomScorer{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomScorer) Score(_, _ *roster.Profile) (int, error) {
	return s.rng.Intn(SelfScore + 1), nil
}
