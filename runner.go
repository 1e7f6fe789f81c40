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
	"errors"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// TableResult is the outcome of checking one table. Table and Metrics
// are nil when the raw table was structurally unusable.
type TableResult struct {
	TableID    string
	Table      *Table
	Violations []Violation
	Metrics    *TableMetrics
	ElapsedMs  int64
}

// Passed reports whether the table produced no violations at all,
// warnings included.
func (r *TableResult) Passed() bool {
	return len(r.Violations) == 0
}

// BlockingCount returns the number of violations that exclude the
// table from assembled datasets.
func (r *TableResult) BlockingCount() int {
	n := 0
	for _, v := range r.Violations {
		if v.Blocking() {
			n++
		}
	}
	return n
}

// RunnerOptions configures a Runner. The zero value means strict mode,
// one worker per CPU and no profiling.
type RunnerOptions struct {
	Mode    Mode
	Workers int
	Profile bool
}

// Runner checks raw tables against a registry.
type Runner struct {
	schema  *Schema
	options RunnerOptions
	logger  *slog.Logger
}

func NewRunner(schema *Schema, options RunnerOptions, logger *slog.Logger) *Runner {
	if options.Mode == "" {
		options.Mode = ModeStrict
	}
	if options.Workers < 1 {
		options.Workers = runtime.NumCPU()
	}
	if logger == nil {
		// noop logger by default
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		schema:  schema,
		options: options,
		logger:  logger,
	}
}

// ValidateTable checks a single raw table. A structurally unusable
// table yields one table-level violation and no typed table.
func (r *Runner) ValidateTable(raw *RawTable) *TableResult {
	startTime := time.Now()
	result := &TableResult{TableID: raw.ID}

	tbl, violations, err := CheckTable(raw, r.schema, r.options.Mode)
	if err != nil {
		message := err.Error()
		var structural *StructuralError
		if errors.As(err, &structural) {
			message = structural.Reason
		}
		result.Violations = []Violation{{
			TableID:  raw.ID,
			Row:      TableLevelRow,
			Rule:     RuleStructural,
			Severity: RuleStructural.Severity(),
			Message:  message,
		}}
		result.ElapsedMs = time.Since(startTime).Milliseconds()
		r.logger.Warn("table is structurally unusable", "table_id", raw.ID, "error", message)
		return result
	}

	result.Table = tbl
	result.Violations = violations
	if r.options.Profile {
		result.Metrics = ProfileTable(tbl)
	}
	result.ElapsedMs = time.Since(startTime).Milliseconds()

	r.logger.Debug("checked table",
		"table_id", raw.ID,
		"rows", raw.NumRows(),
		"violations", len(violations),
		"elapsed_ms", result.ElapsedMs)
	return result
}

// ValidateTables checks tables concurrently. Results line up with the
// input order regardless of completion order.
func (r *Runner) ValidateTables(tables []*RawTable) []*TableResult {
	startTime := time.Now()
	results := make([]*TableResult, len(tables))

	taskPool := NewTaskPool(r.options.Workers, r.logger)
	for i, raw := range tables {
		slot := i
		t := raw
		taskPool.Enqueue("check:"+t.ID, func() error {
			results[slot] = r.ValidateTable(t)
			return nil
		})
	}
	taskPool.Join()

	r.logger.Debug("checked all tables",
		"tables", len(tables),
		"workers", r.options.Workers,
		"elapsed_ms", time.Since(startTime).Milliseconds())
	return results
}
