// Package schema maps the unstable column headers of published statistical
// releases onto canonical field names, and coerces raw cell values into
// numbers and dates.
//
// Publishers rename columns between releases ("Total supported" one quarter,
// "People receiving support" the next). Rather than a new parser per release,
// each source declares an ordered list of keyword rules; the first observed
// column satisfying a rule claims that canonical field. The precedence order
// is part of the source's contract and is unit-testable in isolation.
//
// Coercion is deliberately forgiving: unparsable counts default to zero and
// unparsable dates skip the row. Both outcomes are reported as explicit
// result variants so callers can count them instead of silently losing them.
package schema
