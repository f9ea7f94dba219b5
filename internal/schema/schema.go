package schema

import "strings"

// Field is a canonical semantic field name ("snapshot_date", "total", ...).
// The set of fields is open: each source adapter declares its own.
type Field string

// Rule binds a canonical field to the keywords that identify its column.
// A column header matches if its folded form contains ANY of the keywords.
type Rule struct {
	Field    Field
	Keywords []string
}

// Mapping is the result of matching a header row against a rule list:
// canonical field -> observed column name. Fields with no matching column
// are absent from the map.
type Mapping map[Field]string

// Column returns the observed column name for a field and whether one matched.
func (m Mapping) Column(f Field) (string, bool) {
	col, ok := m[f]
	return col, ok
}

// Map evaluates rules in declaration order against the observed column names.
// For each rule, the first column (in sheet order) satisfying it wins; later
// columns matching the same rule are ignored. A column already claimed by an
// earlier rule is not offered to later rules, so rule order encodes
// precedence when headers are ambiguous.
func Map(rules []Rule, columns []string) Mapping {
	mapping := make(Mapping, len(rules))
	claimed := make(map[string]bool, len(columns))

	for _, rule := range rules {
		if _, done := mapping[rule.Field]; done {
			continue
		}
		for _, col := range columns {
			if claimed[col] {
				continue
			}
			if matches(rule, col) {
				mapping[rule.Field] = col
				claimed[col] = true
				break
			}
		}
	}
	return mapping
}

func matches(rule Rule, column string) bool {
	folded := Fold(column)
	for _, kw := range rule.Keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// Fold lowercases a header and collapses runs of whitespace (including
// newlines, which spreadsheet headers are full of) to single spaces.
// Rule keywords are written against the folded form.
func Fold(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(header)), " ")
}
