// Package pipeline sequences the enrichment run: approval filtering, topic
// generation, pairwise scoring and document serialization.
package pipeline

import (
	"context"
	"fmt"

	"github.com/ferrovax/mingle/internal/filtering"
	"github.com/ferrovax/mingle/internal/matching"
	"github.com/ferrovax/mingle/internal/roster"
	"github.com/ferrovax/mingle/internal/topics"

	"go.uber.org/zap"
)

// State tracks run progress. Transitions are strictly forward; Failed is
// reached only on fatal errors, never on isolated per-attendee failures.
type State string

const (
	StateIdle             State = "idle"
	StateFiltering        State = "filtering"
	StateGeneratingTopics State = "generating_topics"
	StateScoring          State = "scoring"
	StateSerialized       State = "serialized"
	StateFailed           State = "failed"
)

// Stage names used in the run-level failure log.
const (
	StageTopics  = "topic_generation"
	StageScoring = "scoring"
)

// Failure is one isolated, non-fatal failure recorded during a run.
type Failure struct {
	Stage  string
	APIID  string
	PeerID string
	Err    error
}

// Deps aggregates the pipeline's collaborators. Topics may be nil, in which
// case the topic stage is skipped (attendees keep empty topic lists).
type Deps struct {
	Filters   []filtering.Filter
	FilterCfg *filtering.Config
	Topics    *topics.Generator
	Engine    *matching.Engine
	Logger    *zap.Logger
}

// Config holds orchestration settings.
type Config struct {
	// Workers bounds in-flight topic generation calls.
	Workers int
}

type Pipeline struct {
	deps     Deps
	config   Config
	state    State
	failures []Failure
	document *roster.Document
}

func New(cfg Config, deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Pipeline{
		deps:   deps,
		config: cfg,
		state:  StateIdle,
	}
}

// Run executes the full pipeline over the raw roster and returns the final
// document. Fatal errors abort the run with no document; when serialization
// itself fails the partially constructed document is still returned alongside
// the error for inspection.
func (p *Pipeline) Run(ctx context.Context, attendees *roster.Attendees) (*roster.Document, error) {
	p.failures = nil
	p.document = nil

	p.transition(StateFiltering)
	filtered, err := filtering.Run(ctx, p.deps.FilterCfg, filtering.Deps{Logger: p.deps.Logger}, p.deps.Filters, attendees)
	if err != nil {
		p.transition(StateFailed)
		return nil, fmt.Errorf("filtering: %w", err)
	}

	batch := roster.Project(filtered)
	p.deps.Logger.Info("approved batch ready", zap.Int("count", batch.Len()))

	p.transition(StateGeneratingTopics)
	if p.deps.Topics != nil {
		for _, failure := range p.deps.Topics.GenerateAll(ctx, batch, p.config.Workers) {
			p.failures = append(p.failures, Failure{
				Stage: StageTopics,
				APIID: failure.APIID,
				Err:   failure.Err,
			})
		}
	} else {
		for _, profile := range batch.Profiles {
			profile.DiscussionTopics = []string{}
		}
	}

	p.transition(StateScoring)
	for _, failure := range p.deps.Engine.ScoreAll(batch) {
		p.failures = append(p.failures, Failure{
			Stage:  StageScoring,
			APIID:  failure.APIID,
			PeerID: failure.PeerID,
			Err:    failure.Err,
		})
	}

	document, duplicates := roster.BuildDocument(batch)
	p.document = document
	for _, name := range duplicates {
		p.deps.Logger.Warn("duplicate display name in batch; keeping first occurrence in score maps",
			zap.String("name", name),
		)
	}

	if _, err := document.Bytes(); err != nil {
		p.transition(StateFailed)
		return document, fmt.Errorf("serialize document: %w", err)
	}

	p.transition(StateSerialized)
	p.deps.Logger.Info("pipeline run complete",
		zap.Int("attendees", document.Len()),
		zap.Int("isolated_failures", len(p.failures)),
	)

	return document, nil
}

// State returns the current run state.
func (p *Pipeline) State() State {
	return p.state
}

// Failures returns the isolated failures recorded during the last run.
func (p *Pipeline) Failures() []Failure {
	return p.failures
}

// Document returns the last constructed document, if any. It remains
// available after a serialization failure.
func (p *Pipeline) Document() *roster.Document {
	return p.document
}

func (p *Pipeline) transition(next State) {
	p.deps.Logger.Debug("pipeline state change",
		zap.String("from", string(p.state)),
		zap.String("to", string(next)),
	)
	p.state = next
}
