package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSourceNotFound is returned when a source code has no descriptor.
var ErrSourceNotFound = errors.New("source not found")

// GetSource loads one source descriptor by code.
func (s *Store) GetSource(ctx context.Context, code string) (*Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT code, name, url, kind, cadence, tier, status,
		       COALESCE(last_fingerprint, ''), last_checked_at, last_updated_at
		FROM sources
		WHERE code = ?
	`, code)

	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %q: %w", code, ErrSourceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get source %q: %w", code, err)
	}
	return src, nil
}

// ListSourcesOptions filters the registry listing.
type ListSourcesOptions struct {
	Status SourceStatus // empty = all
	Tier   int          // 0 = all
}

// ListSources returns descriptors ordered by code.
func (s *Store) ListSources(ctx context.Context, opts ListSourcesOptions) ([]Source, error) {
	query := `
		SELECT code, name, url, kind, cadence, tier, status,
		       COALESCE(last_fingerprint, ''), last_checked_at, last_updated_at
		FROM sources WHERE 1=1`
	var args []any
	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, string(opts.Status))
	}
	if opts.Tier > 0 {
		query += " AND tier = ?"
		args = append(args, opts.Tier)
	}
	query += " ORDER BY code"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("list sources: %w", err)
		}
		sources = append(sources, *src)
	}
	return sources, rows.Err()
}

// UpsertSource registers or updates a descriptor. Seed/registration path:
// the ingestion-state columns (fingerprint, timestamps) are deliberately
// not touched on conflict.
func (s *Store) UpsertSource(ctx context.Context, src Source) error {
	if src.Status == "" {
		src.Status = SourceActive
	}
	if src.Tier == 0 {
		src.Tier = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (code, name, url, kind, cadence, tier, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			url = excluded.url,
			kind = excluded.kind,
			cadence = excluded.cadence,
			tier = excluded.tier,
			status = excluded.status
	`, src.Code, src.Name, src.URL, src.Kind, src.Cadence, src.Tier, string(src.Status))
	if err != nil {
		return fmt.Errorf("upsert source %q: %w", src.Code, err)
	}
	return nil
}

// TouchSourceChecked records that the source was checked at t without
// changing its fingerprint (the no-changes short-circuit path).
func (s *Store) TouchSourceChecked(ctx context.Context, code string, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sources SET last_checked_at = ? WHERE code = ?
	`, t.UTC().Format(timeKey), code)
	if err != nil {
		return fmt.Errorf("touch source %q: %w", code, err)
	}
	return nil
}

// AdvanceSourceFingerprint persists the fingerprint observed by a
// successful run and stamps both timestamps. Called only after the run's
// facts are committed, so a failure never advances the fingerprint.
func (s *Store) AdvanceSourceFingerprint(ctx context.Context, code, fingerprint string, t time.Time) error {
	ts := t.UTC().Format(timeKey)
	_, err := s.db.ExecContext(ctx, `
		UPDATE sources
		SET last_fingerprint = ?, last_checked_at = ?, last_updated_at = ?
		WHERE code = ?
	`, fingerprint, ts, ts, code)
	if err != nil {
		return fmt.Errorf("advance fingerprint for %q: %w", code, err)
	}
	return nil
}

// SetSourceStatus flips a descriptor's lifecycle status (deprecation, or
// flagging a source whose format has broken).
func (s *Store) SetSourceStatus(ctx context.Context, code string, status SourceStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sources SET status = ? WHERE code = ?
	`, string(status), code)
	if err != nil {
		return fmt.Errorf("set status for %q: %w", code, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("source %q: %w", code, ErrSourceNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*Source, error) {
	var src Source
	var status string
	var checked, updated sql.NullString
	err := row.Scan(&src.Code, &src.Name, &src.URL, &src.Kind, &src.Cadence,
		&src.Tier, &status, &src.LastFingerprint, &checked, &updated)
	if err != nil {
		return nil, err
	}
	src.Status = SourceStatus(status)
	if src.LastCheckedAt, err = parseNullTime(checked); err != nil {
		return nil, err
	}
	if src.LastUpdatedAt, err = parseNullTime(updated); err != nil {
		return nil, err
	}
	return &src, nil
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(timeKey, v.String)
	if err != nil {
		return nil, fmt.Errorf("bad stored timestamp %q: %w", v.String, err)
	}
	return &t, nil
}
