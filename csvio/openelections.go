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

package csvio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ElectionDataLab/precinctcore"
)

// openElectionsColumns are the columns kept from OpenElections returns
// CSVs, in output order. Files missing any of them are skipped.
var openElectionsColumns = []string{"county", "precinct", "office", "district", "candidate", "party", "votes"}

// OpenElectionsSource reads community-collected returns CSVs named
// *precinct.csv anywhere under its root. The tables are used to
// cross-check our own returns, so candidate names are normalized and
// reported totals rows dropped on the way in.
type OpenElectionsSource struct {
	config *precinctcore.DataSource
	logger *slog.Logger
}

func NewOpenElectionsSource(dataSource *precinctcore.DataSource, logger *slog.Logger) *OpenElectionsSource {
	if logger == nil {
		// noop logger by default
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OpenElectionsSource{
		config: dataSource,
		logger: logger,
	}
}

func (s *OpenElectionsSource) ID() string {
	return s.config.ID
}

func (s *OpenElectionsSource) Tables(ctx context.Context) ([]*precinctcore.RawTable, error) {
	matches, err := doublestar.Glob(os.DirFS(s.config.Root), "**/*precinct.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for returns files: %w", s.config.Root, err)
	}
	sort.Strings(matches)

	var tables []*precinctcore.RawTable
	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(s.config.Root, filepath.FromSlash(rel))
		table, err := ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable returns file", "path", path, "error", err.Error())
			continue
		}
		prepared, err := s.prepare(table, filepath.Base(path))
		if err != nil {
			s.logger.Warn("skipping returns file", "path", path, "error", err.Error())
			continue
		}
		tables = append(tables, prepared)
	}

	s.logger.Debug("collected returns tables", "source_id", s.config.ID, "tables", len(tables))
	return tables, nil
}

// prepare projects a returns table to the expected columns and cleans
// it up: separators are stripped from vote counts, candidate names
// normalized, reported totals rows dropped. A trailing path column
// records the file each row came from.
func (s *OpenElectionsSource) prepare(t *precinctcore.RawTable, fileName string) (*precinctcore.RawTable, error) {
	if err := t.Check(); err != nil {
		return nil, err
	}

	pos := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		pos[name] = i
	}
	var missing []string
	for _, name := range openElectionsColumns {
		if _, ok := pos[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns %s (found %s)",
			strings.Join(missing, ", "), strings.Join(t.Header, ", "))
	}

	out := &precinctcore.RawTable{
		ID:     t.ID,
		Header: append(append([]string{}, openElectionsColumns...), "path"),
	}
	for _, row := range t.Rows {
		candidate := row[pos["candidate"]]
		if containsTotal(candidate) {
			continue
		}
		outRow := make([]string, 0, len(out.Header))
		for _, name := range openElectionsColumns {
			cell := row[pos[name]]
			switch name {
			case "votes":
				cell = strings.ReplaceAll(cell, ",", "")
			case "candidate":
				cell = NormalizeCandidate(cell)
			}
			outRow = append(outRow, cell)
		}
		out.Rows = append(out.Rows, append(outRow, fileName))
	}
	return out, nil
}

func containsTotal(candidate string) bool {
	if precinctcore.IsNullMarker(candidate) {
		return false
	}
	return strings.Contains(strings.ToLower(candidate), "total")
}

var (
	parentheticalRe = regexp.MustCompile(`\(.*\)`)
	initialRe       = regexp.MustCompile(` [a-z]\.* `)
	lastFirstRe     = regexp.MustCompile(`([^,]+), ([^,]+)`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	trailingDotRe   = regexp.MustCompile(`\.$`)
	writeinRe       = regexp.MustCompile(`.*write.*in.*`)
	slashRe         = regexp.MustCompile(`\s*/\s*`)
)

// NormalizeCandidate rewrites a reported candidate name into the
// lowercase "first last" form used for matching across sources. Any
// write-in spelling collapses to "write-in".
func NormalizeCandidate(name string) string {
	if precinctcore.IsNullMarker(name) {
		return name
	}
	s := strings.ToLower(name)
	s = parentheticalRe.ReplaceAllString(s, "")
	s = initialRe.ReplaceAllString(s, " ")
	s = lastFirstRe.ReplaceAllString(s, "$2 $1")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = trailingDotRe.ReplaceAllString(s, "")
	if s == ", i" {
		s = " i"
	}
	s = writeinRe.ReplaceAllString(s, "write-in")
	s = slashRe.ReplaceAllString(s, "/")
	return strings.TrimSpace(s)
}

// CandidateTally aggregates votes over one office and candidate.
type CandidateTally struct {
	Office    string
	Candidate string
	Votes     float64
}

// TallyByCandidateOffice sums votes by office and candidate across
// prepared returns tables. Cells that do not parse as numbers are
// skipped. Results are sorted by office, then candidate.
func TallyByCandidateOffice(tables []*precinctcore.RawTable) []CandidateTally {
	type key struct{ office, candidate string }
	totals := make(map[key]float64)

	for _, t := range tables {
		pos := make(map[string]int, len(t.Header))
		for i, name := range t.Header {
			pos[name] = i
		}
		officeAt, ok1 := pos["office"]
		candidateAt, ok2 := pos["candidate"]
		votesAt, ok3 := pos["votes"]
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		for _, row := range t.Rows {
			votes, err := strconv.ParseFloat(strings.TrimSpace(row[votesAt]), 64)
			if err != nil {
				continue
			}
			totals[key{row[officeAt], row[candidateAt]}] += votes
		}
	}

	tallies := make([]CandidateTally, 0, len(totals))
	for k, votes := range totals {
		tallies = append(tallies, CandidateTally{Office: k.office, Candidate: k.candidate, Votes: votes})
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Office != tallies[j].Office {
			return tallies[i].Office < tallies[j].Office
		}
		return tallies[i].Candidate < tallies[j].Candidate
	})
	return tallies
}
