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

package codebook

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ElectionDataLab/precinctcore"
)

// Frequency counts occurrences of one value in one variable. Null
// values count too and render as empty strings.
type Frequency struct {
	Variable string
	Value    string
	Count    int
}

// Frequencies tabulates value frequencies for every variable of a
// table except the vote counts, which are data rather than categories.
// Results are sorted by variable, value and count.
func Frequencies(t *precinctcore.Table) []Frequency {
	var frequencies []Frequency
	for _, column := range t.Columns {
		if column.Spec.Name == "votes" {
			continue
		}
		counts := make(map[string]int)
		for _, value := range column.Values {
			counts[value.String()]++
		}
		for value, count := range counts {
			frequencies = append(frequencies, Frequency{
				Variable: column.Spec.Name,
				Value:    value,
				Count:    count,
			})
		}
	}

	sort.Slice(frequencies, func(i, j int) bool {
		a, b := frequencies[i], frequencies[j]
		if a.Variable != b.Variable {
			return a.Variable < b.Variable
		}
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Count < b.Count
	})
	return frequencies
}

// WriteFrequenciesCSV writes a frequency table as CSV.
func WriteFrequenciesCSV(w io.Writer, frequencies []Frequency) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"variable", "value", "count"}); err != nil {
		return fmt.Errorf("failed to write frequencies header: %w", err)
	}
	for _, f := range frequencies {
		if err := writer.Write([]string{f.Variable, f.Value, strconv.Itoa(f.Count)}); err != nil {
			return fmt.Errorf("failed to write frequency row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
