package tabular

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DecodeHTML extracts every <table> element from an HTML document, in
// document order. The header comes from the first row's <th> cells, or its
// <td> cells when the publisher skipped <th> entirely. Tables are named
// "table-0", "table-1", ... so adapters can address a specific one even when
// the page carries navigation tables around the data.
func DecodeHTML(payload []byte) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, &DecodeError{Kind: KindHTML, Message: "unparseable document", Err: err}
	}

	var tables []Table
	doc.Find("table").Each(func(i int, sel *goquery.Selection) {
		table, ok := htmlTable(fmt.Sprintf("table-%d", i), sel)
		if ok {
			tables = append(tables, table)
		}
	})

	if len(tables) == 0 {
		return nil, &DecodeError{Kind: KindHTML, Message: "document contains no tables"}
	}
	return tables, nil
}

func htmlTable(name string, sel *goquery.Selection) (Table, bool) {
	trs := sel.Find("tr")
	if trs.Length() == 0 {
		return Table{}, false
	}

	first := trs.First()
	headerCells := first.Find("th")
	dataStart := 1
	if headerCells.Length() == 0 {
		headerCells = first.Find("td")
	}
	if headerCells.Length() == 0 {
		return Table{}, false
	}

	var columns []string
	headerCells.Each(func(_ int, cell *goquery.Selection) {
		columns = append(columns, strings.TrimSpace(cell.Text()))
	})

	table := Table{Name: name, Columns: columns}
	trs.Each(func(i int, tr *goquery.Selection) {
		if i < dataStart {
			return
		}
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if hasContent(cells) {
			table.Rows = append(table.Rows, rowFromCells(columns, cells))
		}
	})
	return table, true
}
