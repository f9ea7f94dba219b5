package testutil

import (
	"fmt"
	"sync"
)

// RunIDs generates sequential, human-readable run IDs ("run-000001",
// "run-000002", ...) in place of UUIDv7s. Sequential IDs keep ledger
// assertions and golden output stable across test runs.
//
// Thread-safe.
type RunIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewRunIDs creates a generator with the given prefix. An empty prefix
// defaults to "run".
func NewRunIDs(prefix string) *RunIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &RunIDs{prefix: prefix}
}

// Next returns the next ID in the sequence.
func (g *RunIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%06d", g.prefix, g.next)
}
