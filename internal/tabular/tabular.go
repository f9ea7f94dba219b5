// Package tabular turns fetched payloads (XLSX workbooks, HTML documents,
// delimited text) into named tables of string-valued rows. Decoding is
// format-only: no interpretation of cell contents happens here.
package tabular

import "fmt"

// Kind identifies a decoder. It is stored on the source descriptor.
type Kind string

const (
	KindXLSX Kind = "xlsx"
	KindCSV  Kind = "csv"
	KindHTML Kind = "html"
)

// ValidKind reports whether k names a known decoder.
func ValidKind(k Kind) bool {
	switch k {
	case KindXLSX, KindCSV, KindHTML:
		return true
	}
	return false
}

// Row maps observed column name to the raw cell value. Cells beyond the
// header width are dropped; missing cells are empty strings.
type Row map[string]string

// Table is one decoded sheet or table: its name (sheet name, table index),
// the header in sheet order, and the data rows.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// DecodeError means the payload could not be decoded as its declared kind,
// or contained no usable table. The run fails; the fingerprint does not
// advance, so the next attempt retries from scratch.
type DecodeError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Kind, e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode dispatches a payload to the decoder for kind. Every decoder
// returns the payload's tables in document order; an empty slice is a
// DecodeError, not a silent success.
func Decode(kind Kind, payload []byte) ([]Table, error) {
	switch kind {
	case KindXLSX:
		return DecodeXLSX(payload)
	case KindCSV:
		return DecodeCSV(payload)
	case KindHTML:
		return DecodeHTML(payload)
	default:
		return nil, &DecodeError{Kind: kind, Message: "unknown decoder kind"}
	}
}

// rowFromCells zips a header with one record, ignoring surplus cells.
func rowFromCells(columns []string, cells []string) Row {
	row := make(Row, len(columns))
	for i, col := range columns {
		if i < len(cells) {
			row[col] = cells[i]
		} else {
			row[col] = ""
		}
	}
	return row
}
