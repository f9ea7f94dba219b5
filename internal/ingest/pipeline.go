// Package ingest drives the per-source ingestion lifecycle:
// fetch -> change-check -> decode -> transform -> load, with every attempt
// recorded on the append-only run ledger.
//
// The pipeline is single-threaded by design: one source is fully processed
// before the next begins, and nothing here locks. Two concurrent
// invocations for the same source are the scheduler's bug, not this
// package's concern.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mward/statingest/internal/adapter"
	"github.com/mward/statingest/internal/refdata"
	"github.com/mward/statingest/internal/store"
	"github.com/mward/statingest/internal/tabular"
)

// Fetcher retrieves the raw payload for a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Pipeline executes ingestion attempts against one store.
type Pipeline struct {
	store   *store.Store
	fetcher Fetcher
	logger  *slog.Logger

	// now and newRunID are overridable for deterministic tests.
	now      func() time.Time
	newRunID func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunIDGenerator overrides run ID generation.
func WithRunIDGenerator(gen func() string) Option {
	return func(p *Pipeline) { p.newRunID = gen }
}

// New creates a pipeline over st using f for remote fetches.
func New(st *store.Store, f Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    st,
		fetcher:  f,
		logger:   slog.Default(),
		now:      time.Now,
		newRunID: defaultRunID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// defaultRunID prefers UUIDv7 for time-ordered ledger IDs.
func defaultRunID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// RunResult is the per-run outcome surfaced to the CLI and scheduler.
type RunResult struct {
	SourceCode  string `json:"source_code"`
	RunID       string `json:"run_id"`
	Status      string `json:"status"`
	NoChanges   bool   `json:"no_changes"`
	Processed   int    `json:"records_processed"`
	Inserted    int    `json:"records_inserted"`
	Updated     int    `json:"records_updated"`
	Skipped     int    `json:"rows_skipped"`
	StubsMinted int    `json:"stubs_minted"`
	Error       string `json:"error,omitempty"`
}

// Run executes exactly one ingestion attempt for sourceCode.
//
// Failures from fetch onward are recorded on the run ledger AND propagated;
// the source fingerprint only advances after a successful load, so a failed
// or interrupted attempt leaves the next invocation retrying from scratch.
func (p *Pipeline) Run(ctx context.Context, sourceCode string) (*RunResult, error) {
	src, err := p.store.GetSource(ctx, sourceCode)
	if err != nil {
		if errors.Is(err, store.ErrSourceNotFound) {
			return nil, newError(ErrCodeSourceNotFound, sourceCode, "no source descriptor", err)
		}
		return nil, err
	}

	ad, err := adapter.For(src.Code)
	if err != nil {
		return nil, newError(ErrCodeDecodeFailed, src.Code, "no adapter for source", err)
	}

	runID := p.newRunID()
	if err := p.store.CreateRun(ctx, runID, src.Code, p.now()); err != nil {
		return nil, err
	}
	if err := p.store.StartRun(ctx, runID); err != nil {
		return nil, err
	}
	p.logger.Info("run started", "source", src.Code, "run", runID, "url", src.URL)

	result, err := p.execute(ctx, src, ad, runID)
	if err != nil {
		p.failRun(ctx, runID, err)
		return nil, err
	}
	return result, nil
}

// execute is the fallible middle of a run: everything between the ledger
// entry existing and the run reaching a terminal state.
func (p *Pipeline) execute(ctx context.Context, src *store.Source, ad adapter.Adapter, runID string) (*RunResult, error) {
	payload, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, newError(ErrCodeFetchFailed, src.Code, "fetch failed", err)
	}

	fingerprint := Fingerprint(payload)
	if src.LastFingerprint != "" && fingerprint == src.LastFingerprint {
		// Publisher re-served identical content: complete without any
		// parse or load work. The descriptor's fingerprint is untouched;
		// only the checked timestamp moves.
		if err := p.store.TouchSourceChecked(ctx, src.Code, p.now()); err != nil {
			return nil, err
		}
		err := p.store.CompleteRun(ctx, runID, store.RunOutcome{
			FinishedAt:  p.now(),
			Fingerprint: fingerprint,
			NoChanges:   true,
			Metadata:    `{"no_changes": true}`,
		})
		if err != nil {
			return nil, err
		}
		p.logger.Info("run completed, no changes", "source", src.Code, "run", runID)
		return &RunResult{
			SourceCode: src.Code,
			RunID:      runID,
			Status:     string(store.RunCompleted),
			NoChanges:  true,
		}, nil
	}

	tables, err := tabular.Decode(tabular.Kind(src.Kind), payload)
	if err != nil {
		return nil, newError(ErrCodeDecodeFailed, src.Code, "decode failed", err)
	}

	resolver := refdata.NewResolver(p.store)
	batch, err := ad.Transform(ctx, tables, resolver)
	if err != nil {
		return nil, newError(ErrCodeDecodeFailed, src.Code, "transform failed", err)
	}
	for _, reason := range batch.Skipped {
		p.logger.Debug("row skipped", "source", src.Code, "run", runID, "reason", reason)
	}

	stats, err := batch.Load(ctx, p.store, runID)
	if err != nil {
		return nil, newError(ErrCodeLoadFailed, src.Code, "load failed", err)
	}

	if err := p.store.AdvanceSourceFingerprint(ctx, src.Code, fingerprint, p.now()); err != nil {
		return nil, err
	}
	err = p.store.CompleteRun(ctx, runID, store.RunOutcome{
		FinishedAt:       p.now(),
		RecordsProcessed: batch.Processed,
		RecordsInserted:  stats.Inserted,
		RecordsUpdated:   stats.Updated,
		Fingerprint:      fingerprint,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("run completed", "source", src.Code, "run", runID,
		"processed", batch.Processed, "inserted", stats.Inserted,
		"updated", stats.Updated, "skipped", len(batch.Skipped),
		"stubs", batch.StubsMinted)

	return &RunResult{
		SourceCode:  src.Code,
		RunID:       runID,
		Status:      string(store.RunCompleted),
		Processed:   batch.Processed,
		Inserted:    stats.Inserted,
		Updated:     stats.Updated,
		Skipped:     len(batch.Skipped),
		StubsMinted: batch.StubsMinted,
	}, nil
}

// failRun records a failure on the ledger. A ledger write failure at this
// point is logged, not propagated: the original error matters more.
func (p *Pipeline) failRun(ctx context.Context, runID string, cause error) {
	if err := p.store.FailRun(ctx, runID, p.now(), cause.Error()); err != nil {
		p.logger.Error("failed to record run failure", "run", runID, "error", err)
	}
}

// BatchResult aggregates one RunAll invocation.
type BatchResult struct {
	Results   []RunResult `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// BatchOptions filters which sources a batch covers.
type BatchOptions struct {
	Tier int // 0 = all tiers
}

// RunAll executes one attempt per active source, sequentially, in code
// order. A source's failure is isolated: it is recorded in the batch
// result and the batch moves on. The returned error is non-nil only when
// the source listing itself fails.
func (p *Pipeline) RunAll(ctx context.Context, opts BatchOptions) (*BatchResult, error) {
	sources, err := p.store.ListSources(ctx, store.ListSourcesOptions{
		Status: store.SourceActive,
		Tier:   opts.Tier,
	})
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{}
	for _, src := range sources {
		result, err := p.Run(ctx, src.Code)
		if err != nil {
			p.logger.Error("source failed", "source", src.Code, "error", err)
			batch.Results = append(batch.Results, RunResult{
				SourceCode: src.Code,
				Status:     string(store.RunFailed),
				Error:      err.Error(),
			})
			batch.Failed++
			continue
		}
		batch.Results = append(batch.Results, *result)
		batch.Succeeded++
	}
	return batch, nil
}

// Describe returns a short human summary of a run result.
func (r *RunResult) Describe() string {
	if r.Error != "" {
		return fmt.Sprintf("%s: failed: %s", r.SourceCode, r.Error)
	}
	if r.NoChanges {
		return fmt.Sprintf("%s: completed (no changes)", r.SourceCode)
	}
	return fmt.Sprintf("%s: completed: %d processed, %d inserted, %d updated, %d skipped",
		r.SourceCode, r.Processed, r.Inserted, r.Updated, r.Skipped)
}
