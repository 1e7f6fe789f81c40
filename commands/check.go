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

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ElectionDataLab/precinctcore"
	"github.com/ElectionDataLab/precinctcore/csvio"
	"github.com/ElectionDataLab/precinctcore/metadata"
	"github.com/ElectionDataLab/precinctcore/release"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [state ...]",
	Short: "Check state returns against the variable registry.",
	Long: `Check state returns against the variable registry: coercion to the
declared types, required values, and declared domains. States are named
by postal abbreviation and resolved under the data directory. With no
arguments every discovered state file is checked, and included states
without a final file are reported. The command exits non-zero when any
table fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		registry := loadRegistry(cmd)
		mode := getMode(cmd)
		root := getString(cmd, "data-dir")

		files, err := csvio.DiscoverStateFiles(root, getInt(cmd, "year"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		if len(args) > 0 {
			files = selectStates(files, args)
		} else {
			reportMissingStates(cmd, files, logger)
		}
		if len(files) == 0 {
			fmt.Printf("no final state files under %s\n", root)
			os.Exit(2)
		}

		var tables []*precinctcore.RawTable
		for _, file := range files {
			table, err := csvio.ReadFile(file.Path)
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			tables = append(tables, table)
		}

		runner := precinctcore.NewRunner(registry, precinctcore.RunnerOptions{
			Mode:    mode,
			Workers: getInt(cmd, "workers"),
			Profile: getFlag(cmd, "profile"),
		}, logger)
		results := runner.ValidateTables(tables)

		report := precinctcore.Summarize(results, mode)
		report.RunID = uuid.NewString()
		report.GeneratedAt = time.Now().UTC()

		if getFlag(cmd, "json") {
			data, err := report.JSON()
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			fmt.Println(string(data))
		} else {
			printReport(report)
			printFindings(results)
		}
		if !report.Pass() {
			os.Exit(1)
		}
	},
}

func init() {
	checkCmd.Flags().String("data-dir", ".", "data root holding <ST>/final/<year>-<st>-precinct.csv files")
	checkCmd.Flags().Int("year", 0, "restrict state files to one election year, 0 means any")
	checkCmd.Flags().Bool("json", false, "emit the report as JSON")
	checkCmd.Flags().Bool("profile", false, "include per-column metrics")
	rootCmd.AddCommand(checkCmd)
}

// selectStates keeps the discovered files for the requested postals.
// A requested state with no file stops the command.
func selectStates(files []csvio.StateFile, postals []string) []csvio.StateFile {
	byState := make(map[string]csvio.StateFile, len(files))
	for _, file := range files {
		byState[file.State] = file
	}
	var selected []csvio.StateFile
	for _, postal := range postals {
		file, ok := byState[strings.ToUpper(postal)]
		if !ok {
			fmt.Printf("no final returns for %s\n", strings.ToUpper(postal))
			os.Exit(2)
		}
		selected = append(selected, file)
	}
	return selected
}

// reportMissingStates warns for coverage-included states that have no
// final file yet. Missing coverage metadata is not an error here.
func reportMissingStates(cmd *cobra.Command, files []csvio.StateFile, logger *slog.Logger) {
	coveragePath := filepath.Join(getString(cmd, "metadata-dir"), "dataset", "common", "precinct-coverage.yaml")
	coverage, err := metadata.LoadCoverage(coveragePath)
	if err != nil {
		return
	}
	present := make(map[string]bool, len(files))
	for _, file := range files {
		present[file.State] = true
	}
	for _, postal := range coverage.IncludedPostals() {
		if !present[postal] {
			logger.Warn("included state has no final returns", "state", postal)
		}
	}
}

// printReport renders a report for a terminal, one line per table,
// then the violations, trimmed to the terminal width.
func printReport(report *precinctcore.Report) {
	width := 100
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			width = w
		}
	}

	for _, table := range report.Tables {
		status := "ok"
		if !table.Passed {
			status = "FAIL"
		}
		fmt.Printf("%-36s %8d rows %5d violations  %s\n", table.TableID, table.Rows, table.Violations, status)
	}
	if len(report.Violations) > 0 {
		fmt.Println()
		for _, v := range report.Violations {
			fmt.Println(truncate(v.String(), width))
		}
	}
	for _, skip := range report.Skipped {
		fmt.Printf("skipped %s: %s\n", skip.TableID, skip.Reason)
	}

	for _, metrics := range report.Profiles {
		printMetrics(metrics)
	}

	fmt.Printf("\n%d/%d tables passed, %d errors, %d warnings\n",
		report.TablesPassed, report.TablesChecked, report.Errors, report.Warnings)
}

// printFindings runs the release quality heuristics over each checked
// table. Findings are advisory and never change the exit status.
func printFindings(results []*precinctcore.TableResult) {
	for _, result := range results {
		if result.Table == nil {
			continue
		}
		findings := release.Inspect(result.Table)
		if len(findings) == 0 {
			continue
		}
		fmt.Printf("\nfindings for %s:\n", result.TableID)
		for _, finding := range findings {
			fmt.Printf("  %s\n", finding.String())
		}
	}
}

func printMetrics(metrics *precinctcore.TableMetrics) {
	names := make([]string, 0, len(metrics.ColumnsMetrics))
	for name := range metrics.ColumnsMetrics {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return metrics.ColumnsMetrics[names[i]].ColumnPosition < metrics.ColumnsMetrics[names[j]].ColumnPosition
	})

	fmt.Printf("\ncolumn metrics for %s (%d rows):\n", metrics.TableID, metrics.TotalRows)
	for _, name := range names {
		column := metrics.ColumnsMetrics[name]
		line := fmt.Sprintf("  %-24s %-8s nulls=%d distinct=%d", column.ColumnName, column.DataType, column.NullCount, column.DistinctCount)
		if column.MinValue != nil && column.MaxValue != nil {
			line += fmt.Sprintf(" min=%g max=%g", *column.MinValue, *column.MaxValue)
		}
		fmt.Println(line)
	}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
