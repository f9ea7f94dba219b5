// Package adapter holds the per-source specializations of the ingestion
// lifecycle: each adapter owns a source's schema-mapping rules and the
// transform from decoded tables to typed fact records.
//
// Adapters are pure over their inputs except for entity resolution, which
// may mint stub entities. They never write facts themselves: Transform
// returns a Batch whose Load closure the orchestrator invokes, so the
// fetch/decode/transform/load sequencing lives in exactly one place.
package adapter

import (
	"context"
	"fmt"

	"github.com/mward/statingest/internal/refdata"
	"github.com/mward/statingest/internal/store"
	"github.com/mward/statingest/internal/tabular"
)

// Batch is the output of one transform: the candidate records and how to
// load them.
type Batch struct {
	// Processed counts candidate records produced by the transform.
	Processed int
	// Skipped collects row-level exclusion reasons (bad dates, reserved
	// labels). Skips are reported, never fatal.
	Skipped []string
	// StubsMinted counts reference entities created during resolution.
	StubsMinted int
	// Load writes the records through the store's conflict-policy upserts.
	Load func(ctx context.Context, st *store.Store, runID string) (store.LoadStats, error)
}

// Adapter transforms one source's decoded tables into loadable records.
type Adapter interface {
	// Code is the source code this adapter serves.
	Code() string
	// Transform maps, coerces and resolves the decoded tables.
	Transform(ctx context.Context, tables []tabular.Table, resolver *refdata.Resolver) (*Batch, error)
}

// registry of built-in adapters, keyed by source code.
var registry = map[string]Adapter{}

func register(a Adapter) {
	registry[a.Code()] = a
}

func init() {
	register(&AreaSupportAdapter{})
	register(&NationalityAdapter{})
	register(&NationalSummaryAdapter{})
}

// For returns the adapter registered for a source code.
func For(code string) (Adapter, error) {
	a, ok := registry[code]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for source %q", code)
	}
	return a, nil
}

// Codes lists the registered source codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
