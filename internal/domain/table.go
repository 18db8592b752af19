package domain

import "strings"

// Table is a tabular source exactly as read from disk: a header plus data
// rows. Cells are untyped strings; loaders assign column semantics.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

// Row is one data row and its 1-based line (or sheet row) number.
type Row struct {
	Line   int
	Fields []string
}

// ColumnIndex finds a header by name, ignoring case and surrounding spaces.
func (t *Table) ColumnIndex(name string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range t.Header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i, true
		}
	}
	return -1, false
}

// Field returns the trimmed cell at index i, or "" when the row is short.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}
