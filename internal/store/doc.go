// Package store is the durable layer under the ingestion pipeline: the
// source registry, the append-only run ledger, the reference entities, and
// the normalized fact tables with their derived metrics.
//
// All writes are idempotent at the natural-key level. Fact tables declare a
// conflict policy in SQL (DO UPDATE for correctable figures, DO NOTHING for
// immutable aggregates), so a retried run converges on the same end state
// instead of duplicating rows. No operation here takes an application-level
// lock; single-writer discipline is the caller's job.
package store
