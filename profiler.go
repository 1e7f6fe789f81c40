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
	"math"
	"strings"
	"time"
)

// TableMetrics represents the profile of one checked table.
type TableMetrics struct {
	ProfiledAt          int64                     `json:"profiled_at"`
	TableID             string                    `json:"table_id"`
	TotalRows           int                       `json:"total_rows"`
	ColumnsMetrics      map[string]*ColumnMetrics `json:"columns_metrics"`
	ProfilingDurationMs int64                     `json:"profiling_duration_ms"`
}

// ColumnMetrics represents the profile of one typed column.
type ColumnMetrics struct {
	ColumnName         string       `json:"col_name"`
	DataType           SemanticType `json:"data_type"`
	ColumnPosition     int          `json:"col_position"`
	NullCount          int          `json:"null_count"`
	BlankCount         *int         `json:"blank_count,omitempty"` // string only
	UnconvertibleCount int          `json:"unconvertible_count"`
	DistinctCount      int          `json:"distinct_count"`
	MinValue           *float64     `json:"min_value,omitempty"`           // numeric only
	MaxValue           *float64     `json:"max_value,omitempty"`           // numeric only
	AvgValue           *float64     `json:"avg_value,omitempty"`           // numeric only
	StddevValue        *float64     `json:"stddev_value,omitempty"`        // numeric only (Population StdDev)
	MostFrequentValue  *string      `json:"most_frequent_value,omitempty"` // nil when NULL is most frequent
}

// ProfileTable computes per-column metrics for a typed table. Numeric
// aggregates skip nulls and unconvertible cells.
func ProfileTable(t *Table) *TableMetrics {
	startTime := time.Now()
	metrics := &TableMetrics{
		ProfiledAt:     time.Now().Unix(),
		TableID:        t.ID,
		TotalRows:      t.NumRows(),
		ColumnsMetrics: make(map[string]*ColumnMetrics, len(t.Columns)),
	}
	for i := range t.Columns {
		metrics.ColumnsMetrics[t.Columns[i].Spec.Name] = profileColumn(&t.Columns[i], i)
	}
	metrics.ProfilingDurationMs = time.Since(startTime).Milliseconds()
	return metrics
}

func profileColumn(c *Column, position int) *ColumnMetrics {
	m := &ColumnMetrics{
		ColumnName:     c.Spec.Name,
		DataType:       c.Spec.Type,
		ColumnPosition: position,
	}

	distinct := make(map[string]int)
	var sum, sumSq float64
	var numericCount int

	for _, v := range c.Values {
		if v.IsNull() {
			m.NullCount++
			continue
		}
		if v.Kind() == KindUnconvertible {
			m.UnconvertibleCount++
			distinct[v.Raw()]++
			continue
		}
		distinct[v.String()]++
		if isNumericKind(v.Kind()) {
			f := v.Float64()
			sum += f
			sumSq += f * f
			numericCount++
			if m.MinValue == nil || f < *m.MinValue {
				m.MinValue = ptr(f)
			}
			if m.MaxValue == nil || f > *m.MaxValue {
				m.MaxValue = ptr(f)
			}
		}
	}
	m.DistinctCount = len(distinct)

	if c.Spec.Type == TypeString {
		blanks := 0
		for _, v := range c.Values {
			if v.Kind() == KindText && strings.TrimSpace(v.Text()) == "" {
				blanks++
			}
		}
		m.BlankCount = &blanks
	}

	if numericCount > 0 {
		avg := sum / float64(numericCount)
		m.AvgValue = ptr(avg)
		variance := sumSq/float64(numericCount) - avg*avg
		if variance < 0 {
			variance = 0
		}
		m.StddevValue = ptr(math.Sqrt(variance))
	}

	// Most frequent non-null value; nil when nulls outnumber everything.
	var best string
	bestCount := 0
	for s, n := range distinct {
		if n > bestCount || (n == bestCount && s < best) {
			best, bestCount = s, n
		}
	}
	if bestCount > 0 && bestCount >= m.NullCount {
		m.MostFrequentValue = &best
	}
	return m
}

func ptr[T any](v T) *T {
	return &v
}
