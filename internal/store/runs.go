package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunTerminal is returned when a write targets a run that has already
// reached a terminal state. The ledger is append-only: completed and failed
// rows are immutable.
var ErrRunTerminal = errors.New("run is in a terminal state")

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// CreateRun appends a pending ledger entry for one attempt.
func (s *Store) CreateRun(ctx context.Context, id, sourceCode string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (id, source_code, status, started_at)
		VALUES (?, ?, ?, ?)
	`, id, sourceCode, string(RunPending), startedAt.UTC().Format(timeKey))
	if err != nil {
		return fmt.Errorf("create run %s: %w", id, err)
	}
	return nil
}

// StartRun transitions pending -> running.
func (s *Store) StartRun(ctx context.Context, id string) error {
	return s.transition(ctx, id, RunPending, RunRunning, `
		UPDATE ingestion_runs SET status = ?
		WHERE id = ? AND status = ?
	`, string(RunRunning), id, string(RunPending))
}

// RunOutcome carries the terminal fields of a completed run.
type RunOutcome struct {
	FinishedAt       time.Time
	RecordsProcessed int
	RecordsInserted  int
	RecordsUpdated   int
	Fingerprint      string
	NoChanges        bool
	Metadata         string
}

// CompleteRun transitions running -> completed and freezes the counters.
func (s *Store) CompleteRun(ctx context.Context, id string, out RunOutcome) error {
	noChanges := 0
	if out.NoChanges {
		noChanges = 1
	}
	return s.transition(ctx, id, RunRunning, RunCompleted, `
		UPDATE ingestion_runs
		SET status = ?, finished_at = ?, records_processed = ?,
		    records_inserted = ?, records_updated = ?, fingerprint = ?,
		    no_changes = ?, metadata = ?
		WHERE id = ? AND status = ?
	`, string(RunCompleted), out.FinishedAt.UTC().Format(timeKey),
		out.RecordsProcessed, out.RecordsInserted, out.RecordsUpdated,
		out.Fingerprint, noChanges, nullable(out.Metadata), id, string(RunRunning))
}

// FailRun transitions running -> failed, recording the error message.
// Fingerprint stays empty so the ledger shows the attempt never advanced
// change detection.
func (s *Store) FailRun(ctx context.Context, id string, finishedAt time.Time, message string) error {
	return s.transition(ctx, id, RunRunning, RunFailed, `
		UPDATE ingestion_runs
		SET status = ?, finished_at = ?, error = ?
		WHERE id = ? AND status = ?
	`, string(RunFailed), finishedAt.UTC().Format(timeKey), message, id, string(RunRunning))
}

// transition runs a guarded UPDATE. Zero affected rows means the run was
// missing, terminal, or not in the expected state; the distinction is
// resolved with one follow-up read so callers get a precise error.
func (s *Store) transition(ctx context.Context, id string, from, to RunStatus, query string, args ...any) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("run %s: illegal transition %s -> %s", id, from, to)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("run %s: transition to %s: %w", id, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("run %s: transition to %s: %w", id, to, err)
	}
	if n == 1 {
		return nil
	}

	current, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if current.Status.Terminal() {
		return fmt.Errorf("run %s (%s): %w", id, current.Status, ErrRunTerminal)
	}
	return fmt.Errorf("run %s: cannot transition %s -> %s", id, current.Status, to)
}

// GetRun loads one ledger entry.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_code, status, started_at, finished_at,
		       records_processed, records_inserted, records_updated,
		       COALESCE(error, ''), COALESCE(fingerprint, ''), no_changes,
		       COALESCE(metadata, '')
		FROM ingestion_runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns a source's ledger entries, newest first.
func (s *Store) ListRuns(ctx context.Context, sourceCode string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_code, status, started_at, finished_at,
		       records_processed, records_inserted, records_updated,
		       COALESCE(error, ''), COALESCE(fingerprint, ''), no_changes,
		       COALESCE(metadata, '')
		FROM ingestion_runs
		WHERE source_code = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, sourceCode, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs for %q: %w", sourceCode, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs for %q: %w", sourceCode, err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var status, started string
	var finished sql.NullString
	var noChanges int
	err := row.Scan(&run.ID, &run.SourceCode, &status, &started, &finished,
		&run.RecordsProcessed, &run.RecordsInserted, &run.RecordsUpdated,
		&run.Error, &run.Fingerprint, &noChanges, &run.Metadata)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.NoChanges = noChanges != 0
	if run.StartedAt, err = time.Parse(timeKey, started); err != nil {
		return nil, fmt.Errorf("bad started_at %q: %w", started, err)
	}
	if run.FinishedAt, err = parseNullTime(finished); err != nil {
		return nil, err
	}
	return &run, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
