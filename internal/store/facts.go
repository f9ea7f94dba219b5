package store

import (
	"context"
	"fmt"
	"strings"
)

// chunkSize bounds the number of rows per INSERT statement. Multi-row
// inserts beyond this are split to keep statement size and parameter
// counts reasonable.
const chunkSize = 200

// UpsertAreaSupportFacts loads a batch of area facts under the
// (snapshot_date, local_authority_id) natural key with replace-on-conflict
// semantics, then recomputes derived metrics for every affected snapshot.
func (s *Store) UpsertAreaSupportFacts(ctx context.Context, runID string, facts []AreaSupportFact) (LoadStats, error) {
	var stats LoadStats
	snapshots := make(map[string]bool)

	facts = dedupeByKey(facts, func(f AreaSupportFact) string {
		return f.SnapshotDate.Format(dateKey) + "/" + fmt.Sprint(f.LocalAuthorityID)
	})

	for start := 0; start < len(facts); start += chunkSize {
		chunk := facts[start:min(start+chunkSize, len(facts))]

		existing, err := s.countExisting(ctx, "area_support_facts",
			"snapshot_date", "local_authority_id",
			func(i int) (any, any) {
				return chunk[i].SnapshotDate.Format(dateKey), chunk[i].LocalAuthorityID
			}, len(chunk))
		if err != nil {
			return stats, err
		}

		var sb strings.Builder
		sb.WriteString(`
			INSERT INTO area_support_facts
			(snapshot_date, local_authority_id, run_id, total_supported, dispersed, hotel, subsistence_only)
			VALUES `)
		args := make([]any, 0, len(chunk)*7)
		for i, f := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?, ?, ?, ?, ?)")
			snapshot := f.SnapshotDate.Format(dateKey)
			snapshots[snapshot] = true
			args = append(args, snapshot, f.LocalAuthorityID, runID,
				f.TotalSupported, f.Dispersed, f.Hotel, f.SubsistenceOnly)
		}
		sb.WriteString(`
			ON CONFLICT(snapshot_date, local_authority_id) DO UPDATE SET
				run_id = excluded.run_id,
				total_supported = excluded.total_supported,
				dispersed = excluded.dispersed,
				hotel = excluded.hotel,
				subsistence_only = excluded.subsistence_only`)

		if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return stats, fmt.Errorf("upsert area facts: %w", err)
		}
		stats.Inserted += len(chunk) - existing
		stats.Updated += existing
	}

	for snapshot := range snapshots {
		if err := s.RecomputeAreaDerived(ctx, snapshot); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// UpsertNationalityFacts loads nationality facts (replace policy) and
// recomputes their derived metrics.
func (s *Store) UpsertNationalityFacts(ctx context.Context, runID string, facts []NationalityFact) (LoadStats, error) {
	var stats LoadStats
	snapshots := make(map[string]bool)

	facts = dedupeByKey(facts, func(f NationalityFact) string {
		return f.SnapshotDate.Format(dateKey) + "/" + fmt.Sprint(f.NationalityID)
	})

	for start := 0; start < len(facts); start += chunkSize {
		chunk := facts[start:min(start+chunkSize, len(facts))]

		existing, err := s.countExisting(ctx, "nationality_facts",
			"snapshot_date", "nationality_id",
			func(i int) (any, any) {
				return chunk[i].SnapshotDate.Format(dateKey), chunk[i].NationalityID
			}, len(chunk))
		if err != nil {
			return stats, err
		}

		var sb strings.Builder
		sb.WriteString(`
			INSERT INTO nationality_facts (snapshot_date, nationality_id, run_id, persons)
			VALUES `)
		args := make([]any, 0, len(chunk)*4)
		for i, f := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?, ?)")
			snapshot := f.SnapshotDate.Format(dateKey)
			snapshots[snapshot] = true
			args = append(args, snapshot, f.NationalityID, runID, f.Persons)
		}
		sb.WriteString(`
			ON CONFLICT(snapshot_date, nationality_id) DO UPDATE SET
				run_id = excluded.run_id,
				persons = excluded.persons`)

		if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return stats, fmt.Errorf("upsert nationality facts: %w", err)
		}
		stats.Inserted += len(chunk) - existing
		stats.Updated += existing
	}

	for snapshot := range snapshots {
		if err := s.RecomputeNationalityDerived(ctx, snapshot); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// UpsertNationalSummaryFacts loads national aggregates keyed by snapshot
// alone, with ignore-on-conflict semantics: once recorded, an aggregate is
// immutable and re-ingestion is a no-op.
func (s *Store) UpsertNationalSummaryFacts(ctx context.Context, runID string, facts []NationalSummaryFact) (LoadStats, error) {
	var stats LoadStats

	for start := 0; start < len(facts); start += chunkSize {
		chunk := facts[start:min(start+chunkSize, len(facts))]

		var sb strings.Builder
		sb.WriteString(`
			INSERT INTO national_summary_facts
			(snapshot_date, run_id, total_supported, total_dispersed, total_hotel)
			VALUES `)
		args := make([]any, 0, len(chunk)*5)
		for i, f := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?, ?, ?)")
			args = append(args, f.SnapshotDate.Format(dateKey), runID,
				f.TotalSupported, f.TotalDispersed, f.TotalHotel)
		}
		sb.WriteString(" ON CONFLICT(snapshot_date) DO NOTHING")

		res, err := s.db.ExecContext(ctx, sb.String(), args...)
		if err != nil {
			return stats, fmt.Errorf("upsert national summary facts: %w", err)
		}
		// With DO NOTHING, sqlite's change count is exactly the rows that
		// actually landed.
		if n, err := res.RowsAffected(); err == nil {
			stats.Inserted += int(n)
		}
	}
	return stats, nil
}

// dedupeByKey collapses rows sharing a natural key to one row, last value
// wins, first-occurrence order preserved. Without this, a duplicate inside
// a single chunk would resolve as an in-statement DO UPDATE yet be counted
// as a second insert.
func dedupeByKey[T any](rows []T, key func(T) string) []T {
	index := make(map[string]int, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		k := key(r)
		if i, seen := index[k]; seen {
			out[i] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}

// countExisting counts how many of a chunk's natural keys are already
// stored, so a replace-policy load can split inserted from updated.
func (s *Store) countExisting(ctx context.Context, table, keyA, keyB string, key func(int) (any, any), n int) (int, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT COUNT(*) FROM %s WHERE (%s, %s) IN (VALUES ", table, keyA, keyB)
	args := make([]any, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?)")
		a, b := key(i)
		args = append(args, a, b)
	}
	sb.WriteString(")")

	var count int
	if err := s.db.QueryRowContext(ctx, sb.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count existing %s keys: %w", table, err)
	}
	return count, nil
}
