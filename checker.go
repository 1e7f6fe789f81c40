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

// Mode controls how undeclared input columns are handled. Strict mode
// reports them as warnings; lenient mode drops them silently. Declared
// columns are checked the same way in both modes.
type Mode string

const (
	ModeStrict  Mode = "strict"
	ModeLenient Mode = "lenient"
)

// ParseMode parses the string form of a checking mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict:
		return ModeStrict, nil
	case ModeLenient:
		return ModeLenient, nil
	default:
		return "", fmt.Errorf("unknown mode: %q", s)
	}
}

// CheckTable types a raw table against the registry and collects every
// violation in one pass. A non-nil error means the table shape itself is
// unusable and nothing could be checked.
//
// Violations come out in a fixed order: missing declared columns in
// registry order, undeclared columns in input order, then cell findings
// per declared column in registry order. Within a column, coercion
// findings come first, then nulls, then domain findings, each by row.
// Cells that fail coercion are counted once: an unconvertible value is
// neither null nor domain-checked.
func CheckTable(raw *RawTable, schema *Schema, mode Mode) (*Table, []Violation, error) {
	if err := raw.Check(); err != nil {
		return nil, nil, err
	}

	pos := make(map[string]int, len(raw.Header))
	for i, name := range raw.Header {
		pos[name] = i
	}

	tbl := &Table{ID: raw.ID, rows: raw.NumRows()}
	var violations []Violation

	for _, spec := range schema.Variables() {
		if _, ok := pos[spec.Name]; ok {
			continue
		}
		tbl.Missing = append(tbl.Missing, spec.Name)
		if spec.NotNull {
			violations = append(violations, Violation{
				TableID:  raw.ID,
				Row:      TableLevelRow,
				Column:   spec.Name,
				Rule:     RuleMissingColumn,
				Severity: RuleMissingColumn.Severity(),
				Message:  fmt.Sprintf("required column %q is missing", spec.Name),
			})
		}
	}

	for _, name := range raw.Header {
		if _, ok := schema.Lookup(name); ok {
			continue
		}
		tbl.Extra = append(tbl.Extra, name)
		if mode == ModeStrict {
			violations = append(violations, Violation{
				TableID:  raw.ID,
				Row:      TableLevelRow,
				Column:   name,
				Rule:     RuleUnexpectedColumn,
				Severity: RuleUnexpectedColumn.Severity(),
				Message:  fmt.Sprintf("column %q is not declared", name),
			})
		}
	}

	for _, spec := range schema.Variables() {
		i, ok := pos[spec.Name]
		if !ok {
			continue
		}
		values, failures := CoerceColumn(raw.column(i), spec.Type)
		tbl.Columns = append(tbl.Columns, Column{Spec: spec, Values: values})

		for _, f := range failures {
			violations = append(violations, Violation{
				TableID:  raw.ID,
				Row:      f.Row,
				Column:   spec.Name,
				Rule:     RuleCoercion,
				Severity: RuleCoercion.Severity(),
				Raw:      f.Raw,
				Message:  f.Message,
			})
		}
		if spec.NotNull {
			for row, v := range values {
				if v.IsNull() {
					violations = append(violations, Violation{
						TableID:  raw.ID,
						Row:      row,
						Column:   spec.Name,
						Rule:     RuleNotNull,
						Severity: RuleNotNull.Severity(),
						Message:  "required value is missing",
					})
				}
			}
		}
		if len(spec.AllowedValues) > 0 {
			for row, v := range values {
				if v.IsNull() || v.Kind() == KindUnconvertible {
					continue
				}
				if rendered := v.String(); !spec.Allows(rendered) {
					violations = append(violations, Violation{
						TableID:  raw.ID,
						Row:      row,
						Column:   spec.Name,
						Rule:     RuleDomain,
						Severity: RuleDomain.Severity(),
						Raw:      rendered,
						Message:  fmt.Sprintf("value %q is outside the declared domain", rendered),
					})
				}
			}
		}
	}

	return tbl, violations, nil
}
