package matching

import (
	"github.com/ferrovax/mingle/internal/roster"
	"go.uber.org/zap"
)

// Failure records a single pair whose score computation failed. The pair
// keeps a FailedScore entry and the pass continues.
type Failure struct {
	APIID  string
	PeerID string
	Err    error
}

// Engine runs the full O(n^2) scoring pass. Each attendee owns its score map,
// so rows are independent; the fan-out (every attendee scored against every
// other) is part of the contract.
type Engine struct {
	scorer Scorer
	logger *zap.Logger
}

func NewEngine(scorer Scorer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{scorer: scorer, logger: logger}
}

// ScoreAll populates Scores for every profile in the batch, keyed by peer
// api_id. Self pairs always get SelfScore. After the pass every profile holds
// exactly one entry per batch member, itself included.
func (e *Engine) ScoreAll(batch *roster.Batch) []Failure {
	var failures []Failure

	for _, profile := range batch.Profiles {
		profile.Scores = make(map[string]int, batch.Len())

		for _, peer := range batch.Profiles {
			if peer.APIID == profile.APIID {
				profile.Scores[peer.APIID] = SelfScore
				continue
			}

			score, err := e.scorer.Score(profile, peer)
			if err != nil {
				e.logger.Warn("pair scoring failed",
					zap.String("attendee_id", profile.APIID),
					zap.String("peer_id", peer.APIID),
					zap.Error(err),
				)
				profile.Scores[peer.APIID] = FailedScore
				failures = append(failures, Failure{APIID: profile.APIID, PeerID: peer.APIID, Err: err})
				continue
			}

			if score < 0 {
				score = 0
			}
			if score > SelfScore {
				score = SelfScore
			}
			profile.Scores[peer.APIID] = score
		}
	}

	return failures
}
