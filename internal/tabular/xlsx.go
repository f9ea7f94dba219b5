package tabular

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DecodeXLSX opens a workbook from memory and extracts every non-empty
// sheet. The first row containing any non-blank cell is taken as the
// header; statistical releases routinely pad sheets with title and
// footnote rows, so fully blank leading rows are tolerated.
func DecodeXLSX(payload []byte) ([]Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, &DecodeError{Kind: KindXLSX, Message: "not a valid workbook", Err: err}
	}
	defer f.Close()

	var tables []Table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &DecodeError{Kind: KindXLSX, Message: "reading sheet " + sheet, Err: err}
		}
		table, ok := sheetToTable(sheet, rows)
		if ok {
			tables = append(tables, table)
		}
	}

	if len(tables) == 0 {
		return nil, &DecodeError{Kind: KindXLSX, Message: "workbook contains no non-empty sheets"}
	}
	return tables, nil
}

func sheetToTable(name string, rows [][]string) (Table, bool) {
	// Title and footnote rows usually populate a single cell; the header is
	// the first row with at least two. Fall back to any non-empty row for
	// single-column sheets.
	header := -1
	fallback := -1
	for i, cells := range rows {
		if !hasContent(cells) {
			continue
		}
		if fallback < 0 {
			fallback = i
		}
		if countContent(cells) >= 2 {
			header = i
			break
		}
	}
	if header < 0 {
		header = fallback
	}
	if header < 0 {
		return Table{}, false
	}

	columns := make([]string, 0, len(rows[header]))
	for _, c := range rows[header] {
		columns = append(columns, strings.TrimSpace(c))
	}

	table := Table{Name: name, Columns: columns}
	for _, cells := range rows[header+1:] {
		if !hasContent(cells) {
			continue
		}
		table.Rows = append(table.Rows, rowFromCells(columns, cells))
	}
	return table, true
}

func hasContent(cells []string) bool {
	return countContent(cells) > 0
}

func countContent(cells []string) int {
	n := 0
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}
