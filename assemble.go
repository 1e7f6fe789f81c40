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

// SkippedTable records one table excluded from an assembled dataset.
type SkippedTable struct {
	TableID string `json:"table_id"`
	Reason  string `json:"reason"`
}

// Skipped lists the tables that assembly would exclude: structurally
// unusable tables and tables with blocking violations.
func Skipped(results []*TableResult) []SkippedTable {
	var skipped []SkippedTable
	for _, res := range results {
		if reason, skip := skipReason(res); skip {
			skipped = append(skipped, SkippedTable{TableID: res.TableID, Reason: reason})
		}
	}
	return skipped
}

func skipReason(res *TableResult) (string, bool) {
	if res.Table == nil {
		return "structurally unusable", true
	}
	switch n := res.BlockingCount(); n {
	case 0:
		return "", false
	case 1:
		return "1 blocking violation", true
	default:
		return fmt.Sprintf("%d blocking violations", n), true
	}
}

// Assemble concatenates the checked tables into one dataset covering
// every declared variable in registry order. Tables with blocking
// violations are left out; warnings do not exclude a table. Rows keep
// the order the results came in, and declared columns absent from a
// source table are filled with nulls.
func Assemble(id string, results []*TableResult, schema *Schema) (*Table, []SkippedTable) {
	skipped := Skipped(results)

	var included []*Table
	totalRows := 0
	for _, res := range results {
		if _, skip := skipReason(res); skip {
			continue
		}
		included = append(included, res.Table)
		totalRows += res.Table.NumRows()
	}

	out := &Table{ID: id, rows: totalRows}
	for _, spec := range schema.Variables() {
		values := make([]Value, 0, totalRows)
		for _, tbl := range included {
			if col, ok := tbl.Column(spec.Name); ok {
				values = append(values, col.Values...)
			} else {
				for i := 0; i < tbl.NumRows(); i++ {
					values = append(values, Null())
				}
			}
		}
		out.Columns = append(out.Columns, Column{Spec: spec, Values: values})
	}
	return out, skipped
}
