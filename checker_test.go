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

import (
	"reflect"
	"testing"
)

func returnsSchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := NewSchema([]VariableSpec{
		{Name: "year", Type: TypeInteger, NotNull: true},
		{Name: "stage", Type: TypeString, NotNull: true, AllowedValues: []string{"gen", "pri"}},
		{Name: "precinct", Type: TypeString, NotNull: true},
		{Name: "votes", Type: TypeInteger, NotNull: true},
	})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return schema
}

func TestCheckTableClean(t *testing.T) {
	raw := &RawTable{
		ID: "2016-tx-precinct",
		// input order differs from registry order on purpose
		Header: []string{"votes", "precinct", "stage", "year"},
		Rows: [][]string{
			{"120", "A1", "gen", "2016"},
			{"0", "A2", "pri", "2016"},
		},
	}

	tbl, violations, err := CheckTable(raw, returnsSchema(t), ModeStrict)
	if err != nil {
		t.Fatalf("CheckTable() error = %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("CheckTable() violations = %v, want none", violations)
	}
	if got := tbl.Names(); !reflect.DeepEqual(got, []string{"year", "stage", "precinct", "votes"}) {
		t.Errorf("column order = %v, want registry order", got)
	}
	if tbl.NumRows() != 2 {
		t.Errorf("NumRows() = %d, want 2", tbl.NumRows())
	}
	votes, _ := tbl.Column("votes")
	if !votes.Values[0].Equal(Int(120)) || !votes.Values[1].Equal(Int(0)) {
		t.Errorf("votes values = %v", votes.Values)
	}
}

func TestCheckTableViolationOrdering(t *testing.T) {
	raw := &RawTable{
		ID:     "2016-mo-precinct",
		Header: []string{"votes", "stage", "precinct", "notes"},
		Rows: [][]string{
			{"100", "gen", "A", "x"},
			{"abc", "primary", "B", "y"},
			{"", "gen", "C", "z"},
		},
	}

	tbl, violations, err := CheckTable(raw, returnsSchema(t), ModeStrict)
	if err != nil {
		t.Fatalf("CheckTable() error = %v", err)
	}

	expected := []Violation{
		{TableID: "2016-mo-precinct", Row: TableLevelRow, Column: "year",
			Rule: RuleMissingColumn, Severity: SeverityError,
			Message: `required column "year" is missing`},
		{TableID: "2016-mo-precinct", Row: TableLevelRow, Column: "notes",
			Rule: RuleUnexpectedColumn, Severity: SeverityWarning,
			Message: `column "notes" is not declared`},
		{TableID: "2016-mo-precinct", Row: 1, Column: "stage",
			Rule: RuleDomain, Severity: SeverityError, Raw: "primary",
			Message: `value "primary" is outside the declared domain`},
		{TableID: "2016-mo-precinct", Row: 1, Column: "votes",
			Rule: RuleCoercion, Severity: SeverityError, Raw: "abc",
			Message: `cannot coerce "abc" to integer`},
		{TableID: "2016-mo-precinct", Row: 2, Column: "votes",
			Rule: RuleNotNull, Severity: SeverityError,
			Message: "required value is missing"},
	}
	if !reflect.DeepEqual(violations, expected) {
		t.Errorf("CheckTable() violations:\n got %+v\nwant %+v", violations, expected)
	}

	if !reflect.DeepEqual(tbl.Missing, []string{"year"}) {
		t.Errorf("Missing = %v, want [year]", tbl.Missing)
	}
	if !reflect.DeepEqual(tbl.Extra, []string{"notes"}) {
		t.Errorf("Extra = %v, want [notes]", tbl.Extra)
	}
}

func TestCheckTableLenientDropsUndeclared(t *testing.T) {
	raw := &RawTable{
		ID:     "2016-oh-precinct",
		Header: []string{"year", "stage", "precinct", "votes", "scratch"},
		Rows:   [][]string{{"2016", "gen", "P1", "10", "junk"}},
	}

	tbl, violations, err := CheckTable(raw, returnsSchema(t), ModeLenient)
	if err != nil {
		t.Fatalf("CheckTable() error = %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("lenient violations = %v, want none", violations)
	}
	if _, ok := tbl.Column("scratch"); ok {
		t.Error("undeclared column survived into the typed table")
	}
	if !reflect.DeepEqual(tbl.Extra, []string{"scratch"}) {
		t.Errorf("Extra = %v, want [scratch]", tbl.Extra)
	}

	// Same input in strict mode warns but nothing more.
	_, violations, err = CheckTable(raw, returnsSchema(t), ModeStrict)
	if err != nil {
		t.Fatalf("CheckTable() error = %v", err)
	}
	if len(violations) != 1 || violations[0].Rule != RuleUnexpectedColumn {
		t.Fatalf("strict violations = %v, want one unexpected_column", violations)
	}
	if violations[0].Blocking() {
		t.Error("unexpected_column must not block")
	}
}

func TestCheckTableMissingNullableColumn(t *testing.T) {
	schema, err := NewSchema([]VariableSpec{
		{Name: "year", Type: TypeInteger, NotNull: true},
		{Name: "county_name", Type: TypeString},
	})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	raw := &RawTable{
		ID:     "2016-ri-precinct",
		Header: []string{"year"},
		Rows:   [][]string{{"2016"}},
	}

	tbl, violations, err := CheckTable(raw, schema, ModeStrict)
	if err != nil {
		t.Fatalf("CheckTable() error = %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("violations = %v, want none for a missing nullable column", violations)
	}
	if !reflect.DeepEqual(tbl.Missing, []string{"county_name"}) {
		t.Errorf("Missing = %v", tbl.Missing)
	}
}

// A cell that fails coercion is reported once. It must not also count
// as null or get domain-checked.
func TestCheckTableUnconvertibleCountedOnce(t *testing.T) {
	schema, err := NewSchema([]VariableSpec{
		{Name: "votes", Type: TypeInteger, NotNull: true, AllowedValues: []string{"0", "1"}},
	})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	raw := &RawTable{
		ID:     "t",
		Header: []string{"votes"},
		Rows:   [][]string{{"oops"}},
	}

	_, violations, err := CheckTable(raw, schema, ModeStrict)
	if err != nil {
		t.Fatalf("CheckTable() error = %v", err)
	}
	if len(violations) != 1 || violations[0].Rule != RuleCoercion {
		t.Errorf("violations = %+v, want exactly one coercion finding", violations)
	}
}

func TestCheckTableStructural(t *testing.T) {
	tests := []struct {
		name string
		raw  *RawTable
	}{
		{
			name: "duplicate column",
			raw: &RawTable{ID: "t", Header: []string{"votes", "votes"},
				Rows: [][]string{{"1", "2"}}},
		},
		{
			name: "blank column name",
			raw: &RawTable{ID: "t", Header: []string{"votes", ""},
				Rows: [][]string{{"1", "2"}}},
		},
		{
			name: "ragged row",
			raw: &RawTable{ID: "t", Header: []string{"year", "votes"},
				Rows: [][]string{{"2016", "1"}, {"2016"}}},
		},
		{
			name: "no header",
			raw:  &RawTable{ID: "t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, violations, err := CheckTable(tt.raw, returnsSchema(t), ModeStrict)
			if err == nil {
				t.Fatal("CheckTable() expected structural error")
			}
			if _, ok := err.(*StructuralError); !ok {
				t.Errorf("error type = %T, want *StructuralError", err)
			}
			if tbl != nil || violations != nil {
				t.Error("structural failure must not produce a table or violations")
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if mode, err := ParseMode("strict"); err != nil || mode != ModeStrict {
		t.Errorf("ParseMode(strict) = %v, %v", mode, err)
	}
	if mode, err := ParseMode("lenient"); err != nil || mode != ModeLenient {
		t.Errorf("ParseMode(lenient) = %v, %v", mode, err)
	}
	if _, err := ParseMode("permissive"); err == nil {
		t.Error("ParseMode(permissive) expected error")
	}
}
