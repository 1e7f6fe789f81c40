// Copyright 2025 The Precinct Data Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package precinctcore

import "fmt"

// RawTable is an untyped table as parsed from a delimited file. Cells are
// kept verbatim; nothing is trimmed or interpreted at this stage.
type RawTable struct {
	ID     string
	Header []string
	Rows   [][]string
}

// NumRows returns the number of data rows, excluding the header.
func (rt *RawTable) NumRows() int {
	return len(rt.Rows)
}

// Check verifies that the table has a usable shape: a non-empty header
// with unique, non-blank names, and one cell per header field in every
// row. A failed check makes the whole table unusable.
func (rt *RawTable) Check() error {
	if len(rt.Header) == 0 {
		return &StructuralError{TableID: rt.ID, Reason: "no header row"}
	}
	seen := make(map[string]int, len(rt.Header))
	for i, name := range rt.Header {
		if name == "" {
			return &StructuralError{TableID: rt.ID, Reason: fmt.Sprintf("blank column name at position %d", i)}
		}
		if prev, ok := seen[name]; ok {
			return &StructuralError{TableID: rt.ID, Reason: fmt.Sprintf("duplicate column %q at positions %d and %d", name, prev, i)}
		}
		seen[name] = i
	}
	for i, row := range rt.Rows {
		if len(row) != len(rt.Header) {
			return &StructuralError{
				TableID: rt.ID,
				Reason:  fmt.Sprintf("row %d has %d fields, header has %d", i, len(row), len(rt.Header)),
			}
		}
	}
	return nil
}

// column returns the raw cells of the column at position i. It assumes
// Check has passed.
func (rt *RawTable) column(i int) []string {
	out := make([]string, len(rt.Rows))
	for r, row := range rt.Rows {
		out[r] = row[i]
	}
	return out
}

// Column holds the typed values of one declared variable.
type Column struct {
	Spec   VariableSpec
	Values []Value
}

// Table is a checked, typed table. Columns follow registry order and
// cover the declared variables present in the input. Missing lists
// declared variables absent from the input, Extra lists input columns
// that no declaration covers.
type Table struct {
	ID      string
	Columns []Column
	Missing []string
	Extra   []string

	rows int
}

// NewTable builds a typed table directly from columns, for callers
// that assemble tables outside the checker. All columns must have the
// same length.
func NewTable(id string, columns []Column) (*Table, error) {
	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0].Values)
	}
	for _, c := range columns {
		if len(c.Values) != rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", c.Spec.Name, len(c.Values), rows)
		}
	}
	return &Table{ID: id, Columns: columns, rows: rows}, nil
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return t.rows
}

// Column returns the typed column for the named variable.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Spec.Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Spec.Name
	}
	return names
}

// Row renders row i as strings, one per column in table order.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for c := range t.Columns {
		out[c] = t.Columns[c].Values[i].String()
	}
	return out
}
