package store

import "time"

// SourceStatus is the lifecycle state of a source descriptor.
type SourceStatus string

const (
	SourceActive     SourceStatus = "active"
	SourceDeprecated SourceStatus = "deprecated"
	SourceError      SourceStatus = "error"
)

// Source describes one upstream publication and its ingestion state.
// Only the pipeline mutates the fingerprint/timestamp fields; descriptors
// are never deleted, only deprecated.
type Source struct {
	Code            string
	Name            string
	URL             string
	Kind            string // tabular.Kind value
	Cadence         string
	Tier            int
	Status          SourceStatus
	LastFingerprint string
	LastCheckedAt   *time.Time
	LastUpdatedAt   *time.Time
}

// RunStatus is the lifecycle state of one ingestion attempt.
//
// Transitions: pending -> running -> {completed, failed}. Completed and
// failed are terminal; no transition leaves them.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// CanTransition reports whether s -> to is a legal state-machine edge.
func (s RunStatus) CanTransition(to RunStatus) bool {
	switch s {
	case RunPending:
		return to == RunRunning
	case RunRunning:
		return to == RunCompleted || to == RunFailed
	default:
		return false
	}
}

// Run is one ledger entry: a single pipeline execution attempt for one
// source. Created pending, mutated only by its own run, immutable once
// terminal.
type Run struct {
	ID               string
	SourceCode       string
	Status           RunStatus
	StartedAt        time.Time
	FinishedAt       *time.Time
	RecordsProcessed int
	RecordsInserted  int
	RecordsUpdated   int
	Error            string
	Fingerprint      string
	NoChanges        bool
	Metadata         string
}

// LocalAuthority is a region reference entity. Stub rows minted by the
// resolver carry a generated code and no population.
type LocalAuthority struct {
	ID             int64
	Code           string
	Name           string
	NormalizedName string
	Population     *int64
	Country        string
}

// Nationality is a nationality reference entity.
type Nationality struct {
	ID             int64
	ISOCode        string
	Name           string
	NormalizedName string
}

// AreaSupportFact is one (snapshot, local authority) measurement. Derived
// columns are filled by RecomputeAreaDerived, not by the caller.
type AreaSupportFact struct {
	SnapshotDate     time.Time
	LocalAuthorityID int64
	TotalSupported   int64
	Dispersed        int64
	Hotel            int64
	SubsistenceOnly  int64
}

// NationalityFact is one (snapshot, nationality) measurement.
type NationalityFact struct {
	SnapshotDate  time.Time
	NationalityID int64
	Persons       int64
}

// NationalSummaryFact is a national aggregate keyed by snapshot alone.
type NationalSummaryFact struct {
	SnapshotDate   time.Time
	TotalSupported int64
	TotalDispersed int64
	TotalHotel     int64
}

// LoadStats reports the outcome of one batch load.
type LoadStats struct {
	Inserted int
	Updated  int
}

// Add accumulates another batch's stats.
func (ls *LoadStats) Add(other LoadStats) {
	ls.Inserted += other.Inserted
	ls.Updated += other.Updated
}

// dateKey is the canonical storage form for snapshot dates. TEXT ISO dates
// keep SQLite's date() arithmetic usable for the lookback deltas.
const dateKey = "2006-01-02"

// timeKey is the storage form for timestamps.
const timeKey = time.RFC3339
