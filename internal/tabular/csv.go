package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// DecodeCSV parses a delimited text payload into a single table named "csv".
// The first record is the header. Quoting is lax and ragged records are
// accepted because published feeds are hand-exported more often than not.
//
// The column set is unknown until runtime, which is why this decoder sits on
// encoding/csv directly: struct-tag CSV binding needs a compile-time schema.
func DecodeCSV(payload []byte) ([]Table, error) {
	r := csv.NewReader(bytes.NewReader(payload))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, &DecodeError{Kind: KindCSV, Message: "missing header record", Err: err}
	}
	columns := make([]string, len(header))
	for i, c := range header {
		// Excel exports prefix the first header cell with a UTF-8 BOM.
		columns[i] = strings.TrimSpace(strings.TrimPrefix(c, "\uFEFF"))
	}

	table := Table{Name: "csv", Columns: columns}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DecodeError{Kind: KindCSV, Message: "malformed record", Err: err}
		}
		if !hasContent(record) {
			continue
		}
		table.Rows = append(table.Rows, rowFromCells(columns, record))
	}
	return []Table{table}, nil
}
