package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes returned by the statingest binary.
const (
	ExitSuccess      = 0 // command completed
	ExitFailure      = 1 // command ran but the operation failed (fetch, decode, load)
	ExitCommandError = 2 // bad usage: unknown source, invalid flag, missing argument
)

// ExitError carries an exit code alongside an error so main can translate
// command failures into process exit codes without string matching.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and underlying error.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// WrapExitError wraps err with an exit code unless it already carries one.
func WrapExitError(err error, code int) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return NewExitError(code, err)
}

// GetExitCode extracts the exit code from an error chain. A nil error is
// success; an error without an ExitError defaults to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope emitted when --format json is selected.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error half of the JSON envelope.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// OutputFormatter renders command results as human text or JSON depending
// on the --format flag. Commands hand it structured data plus a text
// rendering function and let it pick.
type OutputFormatter struct {
	format string
	stdout io.Writer
	stderr io.Writer
}

// NewOutputFormatter creates a formatter for the given format ("text" or
// "json") writing to the standard streams.
func NewOutputFormatter(format string) *OutputFormatter {
	return &OutputFormatter{format: format, stdout: os.Stdout, stderr: os.Stderr}
}

// NewOutputFormatterWithWriters is the test seam: same behavior, explicit
// writers.
func NewOutputFormatterWithWriters(format string, stdout, stderr io.Writer) *OutputFormatter {
	return &OutputFormatter{format: format, stdout: stdout, stderr: stderr}
}

// Success emits a successful result. In text mode the render function is
// called with stdout; in JSON mode data is wrapped in the response envelope.
func (f *OutputFormatter) Success(data interface{}, render func(w io.Writer)) error {
	if f.format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	if render != nil {
		render(f.stdout)
	}
	return nil
}

// Error emits an error result to stderr (text) or stdout (json envelope).
func (f *OutputFormatter) Error(code, message, details string) error {
	if f.format == "json" {
		return f.writeJSON(CLIResponse{Status: "error", Error: &CLIError{Code: code, Message: message, Details: details}})
	}
	fmt.Fprintf(f.stderr, "error: %s\n", message)
	if details != "" {
		fmt.Fprintf(f.stderr, "  %s\n", details)
	}
	return nil
}

func (f *OutputFormatter) writeJSON(resp CLIResponse) error {
	enc := json.NewEncoder(f.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// Stdout exposes the output stream for commands that render incrementally.
func (f *OutputFormatter) Stdout() io.Writer {
	return f.stdout
}
