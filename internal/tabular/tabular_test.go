package tabular

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV(t *testing.T) {
	payload := []byte("Local Authority,Total Supported,Hotel\nGlasgow City,\"3,844\",1200\nTotal,\"3,844\",1200\n")

	tables, err := DecodeCSV(payload)
	if err != nil {
		t.Fatalf("DecodeCSV() failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	table := tables[0]
	if len(table.Columns) != 3 || table.Columns[0] != "Local Authority" {
		t.Errorf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.Rows[0]["Total Supported"] != "3,844" {
		t.Errorf("cell = %q, want \"3,844\"", table.Rows[0]["Total Supported"])
	}
}

func TestDecodeCSV_StripsByteOrderMark(t *testing.T) {
	payload := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Nationality,People\n2023-03-31,Iran,8000\n")...)

	tables, err := DecodeCSV(payload)
	if err != nil {
		t.Fatalf("DecodeCSV() failed: %v", err)
	}
	table := tables[0]
	if table.Columns[0] != "Date" {
		t.Errorf("first column = %q, want Date", table.Columns[0])
	}
	if table.Rows[0]["Date"] != "2023-03-31" {
		t.Errorf("row keyed by stripped header: Date = %q", table.Rows[0]["Date"])
	}
}

func TestDecodeCSV_RaggedRecords(t *testing.T) {
	payload := []byte("a,b,c\n1,2\n4,5,6,7\n")

	tables, err := DecodeCSV(payload)
	if err != nil {
		t.Fatalf("DecodeCSV() failed: %v", err)
	}
	rows := tables[0].Rows
	if rows[0]["c"] != "" {
		t.Errorf("short record: c = %q, want empty", rows[0]["c"])
	}
	if rows[1]["c"] != "6" {
		t.Errorf("long record: c = %q, want 6", rows[1]["c"])
	}
}

func TestDecodeHTML(t *testing.T) {
	payload := []byte(`<html><body>
		<table>
			<tr><th>Date</th><th>Total</th></tr>
			<tr><td>2023-03-31</td><td>109,000</td></tr>
		</table>
		<table>
			<tr><td>nav</td></tr>
		</table>
	</body></html>`)

	tables, err := DecodeHTML(payload)
	if err != nil {
		t.Fatalf("DecodeHTML() failed: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if tables[0].Name != "table-0" {
		t.Errorf("name = %q", tables[0].Name)
	}
	if got := tables[0].Rows[0]["Total"]; got != "109,000" {
		t.Errorf("Total = %q, want \"109,000\"", got)
	}
}

func TestDecodeHTML_NoTables(t *testing.T) {
	_, err := DecodeHTML([]byte("<html><body><p>nothing here</p></body></html>"))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	// Leading title row above the real header, as releases publish them.
	must(t, f.SetSheetRow(sheet, "A1", &[]any{"Asylum support, March 2023"}))
	must(t, f.SetSheetRow(sheet, "A3", &[]any{"Local Authority", "Total Supported"}))
	must(t, f.SetSheetRow(sheet, "A4", &[]any{"Glasgow City", "3844"}))

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() failed: %v", err)
	}

	tables, err := DecodeXLSX(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeXLSX() failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	table := tables[0]
	if table.Name != sheet {
		t.Errorf("name = %q, want %q", table.Name, sheet)
	}
	// The single-cell title row is skipped; the two-cell row is the header.
	if len(table.Columns) != 2 || table.Columns[0] != "Local Authority" {
		t.Errorf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 1 || table.Rows[0]["Local Authority"] != "Glasgow City" {
		t.Errorf("rows = %v", table.Rows)
	}
}

func TestDecodeXLSX_Garbage(t *testing.T) {
	_, err := DecodeXLSX([]byte("definitely not a zip archive"))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	_, err := Decode(Kind("parquet"), nil)
	if err == nil {
		t.Fatal("want error for unknown kind")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
