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
	"time"

	"github.com/goccy/go-json"
)

// TableSummary is the one-line outcome of checking a table.
type TableSummary struct {
	TableID    string       `json:"table_id"`
	Rows       int          `json:"rows"`
	Violations int          `json:"violations"`
	Blocking   int          `json:"blocking"`
	ByRule     map[Rule]int `json:"by_rule,omitempty"`
	Passed     bool         `json:"passed"`
	ElapsedMs  int64        `json:"elapsed_ms"`
}

// Report collects the outcome of one checking run. RunID and
// GeneratedAt are left for the caller to stamp.
type Report struct {
	RunID         string          `json:"run_id,omitempty"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Mode          Mode            `json:"mode"`
	TablesChecked int             `json:"tables_checked"`
	TablesPassed  int             `json:"tables_passed"`
	Errors        int             `json:"errors"`
	Warnings      int             `json:"warnings"`
	Tables        []TableSummary  `json:"tables"`
	Violations    []Violation     `json:"violations"`
	Skipped       []SkippedTable  `json:"skipped,omitempty"`
	Profiles      []*TableMetrics `json:"profiles,omitempty"`
}

// Summarize builds a report over the checked tables. Violations keep
// their per-table order, tables their input order.
func Summarize(results []*TableResult, mode Mode) *Report {
	report := &Report{
		Mode:          mode,
		TablesChecked: len(results),
		Skipped:       Skipped(results),
	}
	for _, res := range results {
		rows := 0
		if res.Table != nil {
			rows = res.Table.NumRows()
		}
		summary := TableSummary{
			TableID:    res.TableID,
			Rows:       rows,
			Violations: len(res.Violations),
			Blocking:   res.BlockingCount(),
			Passed:     res.Passed(),
			ElapsedMs:  res.ElapsedMs,
		}
		if len(res.Violations) > 0 {
			summary.ByRule = make(map[Rule]int)
		}
		for _, v := range res.Violations {
			summary.ByRule[v.Rule]++
			if v.Severity == SeverityWarning {
				report.Warnings++
			} else {
				report.Errors++
			}
		}
		report.Tables = append(report.Tables, summary)
		if res.Passed() {
			report.TablesPassed++
		}
		report.Violations = append(report.Violations, res.Violations...)
		if res.Metrics != nil {
			report.Profiles = append(report.Profiles, res.Metrics)
		}
	}
	return report
}

// Pass reports whether the run produced no violations at all. A single
// warning fails the run; release pipelines gate on this.
func (r *Report) Pass() bool {
	return r.Errors == 0 && r.Warnings == 0
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
