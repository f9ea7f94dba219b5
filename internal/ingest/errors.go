package ingest

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes pipeline failures.
type ErrorCode string

const (
	// ErrCodeSourceNotFound means no descriptor exists for the source
	// code. Fatal before a run is even created.
	ErrCodeSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"

	// ErrCodeFetchFailed is a network/HTTP-level failure. The fingerprint
	// does not advance; an immediate retry is safe.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"

	// ErrCodeDecodeFailed means the payload was unparseable or the
	// expected sheet/table was absent. Same retry safety as fetch.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"

	// ErrCodeLoadFailed is a datastore write error. The remaining batch is
	// aborted; rows already written stay committed, which is safe because
	// loads are idempotent under their conflict policies.
	ErrCodeLoadFailed ErrorCode = "LOAD_FAILED"
)

// PipelineError is a failure of one pipeline attempt for one source.
//
// Row-level problems (unparseable dates, reserved labels, zero-strength
// numerics) are never PipelineErrors: they degrade to skips or defaulted
// zeros and are only counted.
type PipelineError struct {
	Code    ErrorCode
	Source  string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: source %s: %s: %v", e.Code, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: source %s: %s", e.Code, e.Source, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// IsSourceNotFound reports whether err is a SOURCE_NOT_FOUND failure.
// Uses errors.As to handle wrapped errors.
func IsSourceNotFound(err error) bool { return hasCode(err, ErrCodeSourceNotFound) }

// IsFetchFailure reports whether err is a FETCH_FAILED failure.
func IsFetchFailure(err error) bool { return hasCode(err, ErrCodeFetchFailed) }

// IsDecodeFailure reports whether err is a DECODE_FAILED failure.
func IsDecodeFailure(err error) bool { return hasCode(err, ErrCodeDecodeFailed) }

// IsLoadFailure reports whether err is a LOAD_FAILED failure.
func IsLoadFailure(err error) bool { return hasCode(err, ErrCodeLoadFailed) }

func hasCode(err error, code ErrorCode) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

func newError(code ErrorCode, source, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Source: source, Message: message, Err: err}
}
