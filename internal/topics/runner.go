package topics

import (
	"context"
	"sync"

	"github.com/ferrovax/mingle/internal/roster"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Failure records a per-attendee topic generation error. Failures are
// isolated: the attendee keeps an empty topic list and the batch continues.
type Failure struct {
	APIID string
	Err   error
}

// GenerateAll populates DiscussionTopics for every profile in the batch,
// fanning calls out over a worker pool bounded by workers. Each worker writes
// only to its own profile, so batch order is preserved regardless of
// completion order.
func (g *Generator) GenerateAll(ctx context.Context, batch *roster.Batch, workers int) []Failure {
	if workers < 1 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		// Pool construction only fails on invalid sizes; fall back to
		// processing inline.
		return g.generateSequential(ctx, batch)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []Failure
	)

	for _, profile := range batch.Profiles {
		wg.Add(1)

		task := func() {
			defer wg.Done()
			if failure := g.generateOne(ctx, profile); failure != nil {
				mu.Lock()
				failures = append(failures, *failure)
				mu.Unlock()
			}
		}

		if err := pool.Submit(task); err != nil {
			// Released or overloaded pool; run the task on the caller.
			task()
		}
	}

	wg.Wait()
	return failures
}

func (g *Generator) generateSequential(ctx context.Context, batch *roster.Batch) []Failure {
	var failures []Failure
	for _, profile := range batch.Profiles {
		if failure := g.generateOne(ctx, profile); failure != nil {
			failures = append(failures, *failure)
		}
	}
	return failures
}

func (g *Generator) generateOne(ctx context.Context, profile *roster.Profile) *Failure {
	topics, err := g.Generate(ctx, profile)
	if err != nil {
		g.logger.Warn("topic generation failed",
			zap.String("attendee_id", profile.APIID),
			zap.Error(err),
		)
		profile.DiscussionTopics = []string{}
		return &Failure{APIID: profile.APIID, Err: err}
	}

	profile.DiscussionTopics = topics
	return nil
}
