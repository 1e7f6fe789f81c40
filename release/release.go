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

// Package release turns checked state returns into published dataset
// files: CSVs, Arrow files, R data objects, frequency tables and
// documentation, one bundle per dataverse.
package release

import (
	"fmt"
	"sort"

	"github.com/ElectionDataLab/precinctcore"
)

// SortOrder lists the columns that define the canonical row order of
// released returns, most significant first.
var SortOrder = []string{"dataverse", "state", "jurisdiction", "precinct", "candidate", "party"}

// SortRows orders the table's rows in place by the canonical release
// order. Sort columns missing from the table are skipped, and the sort
// is stable, so input order breaks remaining ties.
func SortRows(t *precinctcore.Table) {
	var keys []*precinctcore.Column
	for _, name := range SortOrder {
		if column, ok := t.Column(name); ok {
			keys = append(keys, column)
		}
	}
	if len(keys) == 0 || t.NumRows() == 0 {
		return
	}

	perm := make([]int, t.NumRows())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		for _, key := range keys {
			if c := key.Values[perm[i]].Compare(key.Values[perm[j]]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	scratch := make([]precinctcore.Value, len(perm))
	for ci := range t.Columns {
		values := t.Columns[ci].Values
		for ri, p := range perm {
			scratch[ri] = values[p]
		}
		copy(values, scratch)
	}
}

// Subset selects the rows assembled for one dataverse, rows assigned
// to every dataverse included, and drops the dataverse column itself,
// which exists only for this split.
func Subset(t *precinctcore.Table, dataverse string) (*precinctcore.Table, error) {
	assignment, ok := t.Column(precinctcore.DataverseColumn)
	if !ok {
		return nil, fmt.Errorf("table %q has no %s column", t.ID, precinctcore.DataverseColumn)
	}

	var keep []int
	for i, v := range assignment.Values {
		if v.Text() == dataverse || v.Text() == precinctcore.DataverseAll {
			keep = append(keep, i)
		}
	}

	columns := make([]precinctcore.Column, 0, len(t.Columns)-1)
	for _, column := range t.Columns {
		if column.Spec.Name == precinctcore.DataverseColumn {
			continue
		}
		values := make([]precinctcore.Value, len(keep))
		for ri, p := range keep {
			values[ri] = column.Values[p]
		}
		columns = append(columns, precinctcore.Column{Spec: column.Spec, Values: values})
	}
	return precinctcore.NewTable(t.ID, columns)
}
