package store

import (
	"context"
	"fmt"
)

// Derived metrics are recomputed per snapshot after every batch load.
//
// The period-over-period deltas use an EXACT calendar lookback
// (date(snapshot, '-3 months') / '-12 months'), not nearest-prior-snapshot.
// A cadence that drifts off the quarterly rhythm therefore yields NULL
// deltas for the drifted snapshot rather than a comparison against the
// nearest release. Deliberate: a NULL is auditable, a silently-wrong
// baseline is not.

// RecomputeAreaDerived fills the derived columns for every area fact at
// the given snapshot (ISO date string).
func (s *Store) RecomputeAreaDerived(ctx context.Context, snapshot string) error {
	statements := []string{
		// Per-capita rate per 10,000 residents. NULL when the linked
		// authority is a stub without population, or population is zero.
		`UPDATE area_support_facts AS f
		 SET rate_per_10k = (
		     SELECT ROUND(f.total_supported * 10000.0 / la.population, 2)
		     FROM local_authorities la
		     WHERE la.id = f.local_authority_id AND la.population > 0
		 )
		 WHERE f.snapshot_date = ?1`,

		// Share of the snapshot total across all areas.
		`UPDATE area_support_facts AS f
		 SET share_of_total_pct = (
		     SELECT ROUND(f.total_supported * 100.0 / SUM(total_supported), 2)
		     FROM area_support_facts
		     WHERE snapshot_date = ?1
		     HAVING SUM(total_supported) > 0
		 )
		 WHERE f.snapshot_date = ?1`,

		// Hotel/contingency share of the row's own total.
		`UPDATE area_support_facts
		 SET hotel_share_pct = CASE
		     WHEN total_supported > 0 THEN ROUND(hotel * 100.0 / total_supported, 2)
		 END
		 WHERE snapshot_date = ?1`,

		// Quarter and year deltas via exact calendar siblings.
		`UPDATE area_support_facts AS f
		 SET change_3m = f.total_supported - (
		         SELECT p.total_supported FROM area_support_facts p
		         WHERE p.local_authority_id = f.local_authority_id
		           AND p.snapshot_date = date(f.snapshot_date, '-3 months')
		     ),
		     change_12m = f.total_supported - (
		         SELECT p.total_supported FROM area_support_facts p
		         WHERE p.local_authority_id = f.local_authority_id
		           AND p.snapshot_date = date(f.snapshot_date, '-12 months')
		     )
		 WHERE f.snapshot_date = ?1`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt, snapshot); err != nil {
			return fmt.Errorf("recompute area derived for %s: %w", snapshot, err)
		}
	}
	return nil
}

// RecomputeNationalityDerived fills derived columns for nationality facts
// at the given snapshot.
func (s *Store) RecomputeNationalityDerived(ctx context.Context, snapshot string) error {
	statements := []string{
		`UPDATE nationality_facts AS f
		 SET share_of_total_pct = (
		     SELECT ROUND(f.persons * 100.0 / SUM(persons), 2)
		     FROM nationality_facts
		     WHERE snapshot_date = ?1
		     HAVING SUM(persons) > 0
		 )
		 WHERE f.snapshot_date = ?1`,

		`UPDATE nationality_facts AS f
		 SET change_12m = f.persons - (
		         SELECT p.persons FROM nationality_facts p
		         WHERE p.nationality_id = f.nationality_id
		           AND p.snapshot_date = date(f.snapshot_date, '-12 months')
		     )
		 WHERE f.snapshot_date = ?1`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt, snapshot); err != nil {
			return fmt.Errorf("recompute nationality derived for %s: %w", snapshot, err)
		}
	}
	return nil
}
