package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CountState says how a Count was produced.
type CountState int

const (
	// CountParsed means the raw value yielded a real number.
	CountParsed CountState = iota
	// CountDefaulted means the raw value was empty or unparsable and the
	// count fell back to zero. Callers that want strictness count these.
	CountDefaulted
)

// Count is the result of numeric coercion: a value plus how it was obtained.
type Count struct {
	Value int64
	State CountState
}

// Defaulted reports whether the count is a zero fallback rather than a
// parsed figure.
func (c Count) Defaulted() bool { return c.State == CountDefaulted }

// ParseCount coerces a raw cell value to an integer count.
//
// Published tables format numbers inconsistently: "1,234", " 1234 ", "1234.0".
// Everything that is not a digit or a leading minus is stripped before
// parsing. Empty, suppressed (":", "-", "n/a", "*") and otherwise unparsable
// cells coerce to a Defaulted zero instead of an error, so partially
// populated historical releases stay ingestible.
func ParseCount(raw string) Count {
	// Drop a decimal tail before stripping, so "1234.0" does not become 12340.
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}

	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '-' && i == 0 {
			b.WriteRune(r)
		}
	}

	s := b.String()
	if s == "" || s == "-" {
		return Count{State: CountDefaulted}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Count{State: CountDefaulted}
	}
	return Count{Value: v, State: CountParsed}
}

// SkipError marks a row as excluded from the output rather than failing the
// whole parse. The orchestrator counts skips; it never aborts on them.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("row skipped: %s", e.Reason)
}

// serialEpoch is the spreadsheet day-zero, 1899-12-30 UTC. Serial day
// counts sit 25,569 days ahead of the Unix epoch (1970-01-01).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order for textual dates. Government releases mix
// ISO dates, UK day-first dates, and bare month-year period labels.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2 January 2006",
	"January 2006",
	"Jan 2006",
	"Jan-06",
}

// ParseDate coerces a raw cell value to a UTC date.
//
// Two shapes are accepted: a spreadsheet serial day count (cells that pass
// through xlsx extraction as bare numbers), or a textual date in one of
// dateLayouts. Anything else returns a *SkipError, which excludes the row
// without failing the run.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &SkipError{Reason: "empty date"}
	}

	// Serial day count. Fractional serials carry a time-of-day component,
	// which is irrelevant for snapshot dates and truncated.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > 200000 {
			return time.Time{}, &SkipError{Reason: fmt.Sprintf("serial date %q out of range", s)}
		}
		return serialEpoch.AddDate(0, 0, int(serial)), nil
	}

	// RFC3339 timestamps appear when a feed serializes real datetimes.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Truncate(24 * time.Hour), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, &SkipError{Reason: fmt.Sprintf("unparseable date %q", s)}
}
