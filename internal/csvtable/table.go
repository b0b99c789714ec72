// Package csvtable reads CSV files as named-column records: cells are looked
// up by header name, never by position, so producers may reorder columns or
// ship a subset/superset of the expected schema.
package csvtable

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Table is a parsed CSV with a header→index map over its data rows.
type Table struct {
	cols map[string]int
	rows [][]string
}

// Parse reads an entire CSV document. The first non-empty line is the header;
// a UTF-8 BOM on the first column name is stripped. Ragged rows are accepted,
// missing trailing cells read as absent.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: empty document")
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[name] = i
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		empty := true
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			rows = append(rows, rec)
		}
	}

	return &Table{cols: cols, rows: rows}, nil
}

// HasColumn reports whether the header carries the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th data row.
func (t *Table) Row(i int) Row {
	return Row{table: t, cells: t.rows[i]}
}

// Row is one data row resolved against its table's header.
type Row struct {
	table *Table
	cells []string
}

// String returns the trimmed cell under the named column, or "" when the
// column is absent from the header or the row is too short.
func (r Row) String(name string) string {
	idx, ok := r.table.cols[name]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

// StringPtr is String returning nil for absent columns and empty cells.
func (r Row) StringPtr(name string) *string {
	s := r.String(name)
	if s == "" {
		return nil
	}
	return &s
}

// Float parses the cell as a float. Absent column, empty cell, "nan", "null"
// and unparseable values all coalesce to nil - leniency, not an error.
func (r Row) Float(name string) *float64 {
	s := r.String(name)
	if !parseable(s) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Int parses the cell as an integer with the same leniency as Float.
// A fractional cell is truncated rather than rejected.
func (r Row) Int(name string) *int {
	s := r.String(name)
	if !parseable(s) {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v := int(f)
	return &v
}

func parseable(s string) bool {
	if s == "" {
		return false
	}
	switch strings.ToLower(s) {
	case "nan", "null":
		return false
	}
	return true
}
