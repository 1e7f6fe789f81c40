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

package release

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ElectionDataLab/precinctcore"
)

// Finding is one advisory result of a pre-release inspection. Findings
// flag rows worth a human look; unlike violations they never block a
// release on their own.
type Finding struct {
	Check  string `json:"check"`
	Column string `json:"column,omitempty"`
	Detail string `json:"detail"`
}

func (f Finding) String() string {
	if f.Column != "" {
		return fmt.Sprintf("[%s] %s: %s", f.Check, f.Column, f.Detail)
	}
	return fmt.Sprintf("[%s] %s", f.Check, f.Detail)
}

// suspectPatterns are substrings that usually mean a reported total or
// summary row slipped in among the precinct rows.
var suspectPatterns = []string{"total", "registered", "cast", "votes", "ballot", "write"}

// suspectColumns are the columns the patterns are matched against.
var suspectColumns = []string{"office", "precinct", "district", "candidate"}

// Inspect runs every pre-release check over an assembled table.
func Inspect(t *precinctcore.Table) []Finding {
	var findings []Finding
	findings = append(findings, SuspectValues(t)...)
	findings = append(findings, DuplicateRows(t)...)
	findings = append(findings, NullCandidates(t)...)
	findings = append(findings, PartyFindings(t)...)
	findings = append(findings, VoteFindings(t)...)
	findings = append(findings, DataverseFindings(t)...)
	return findings
}

// SuspectValues flags values that look like reported totals rather
// than precinct-level rows.
func SuspectValues(t *precinctcore.Table) []Finding {
	var findings []Finding
	for _, name := range suspectColumns {
		column, ok := t.Column(name)
		if !ok {
			continue
		}
		for _, pattern := range suspectPatterns {
			matches := make(map[string]bool)
			for _, v := range column.Values {
				if v.IsNull() {
					continue
				}
				if strings.Contains(strings.ToLower(v.String()), pattern) {
					matches[v.String()] = true
				}
			}
			if len(matches) > 0 {
				findings = append(findings, Finding{
					Check:  "suspect_value",
					Column: name,
					Detail: fmt.Sprintf("matched %q: %s", pattern, joinSorted(matches)),
				})
			}
		}
	}
	return findings
}

// DuplicateRows counts rows that repeat another row exactly.
func DuplicateRows(t *precinctcore.Table) []Finding {
	if t.NumRows() == 0 {
		return nil
	}
	seen := make(map[string]bool, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		seen[strings.Join(t.Row(i), "\x1f")] = true
	}
	duplicates := t.NumRows() - len(seen)
	if duplicates == 0 {
		return nil
	}
	return []Finding{{
		Check:  "duplicate_rows",
		Detail: fmt.Sprintf("%d duplicate rows", duplicates),
	}}
}

// NullCandidates flags rows with a missing candidate that are not
// write-ins, the only rows allowed to omit the candidate name.
func NullCandidates(t *precinctcore.Table) []Finding {
	candidate, ok := t.Column("candidate")
	if !ok {
		return nil
	}
	writein, ok := t.Column("writein")
	if !ok {
		return nil
	}

	count := 0
	for i, v := range candidate.Values {
		if !v.IsNull() {
			continue
		}
		w := writein.Values[i]
		if w.Kind() == precinctcore.KindBool && w.Bool() {
			continue
		}
		count++
	}
	if count == 0 {
		return nil
	}
	return []Finding{{
		Check:  "null_candidate",
		Column: "candidate",
		Detail: fmt.Sprintf("%d rows with null candidate outside write-ins", count),
	}}
}

// PartyFindings reports when a major party never appears, and when the
// non-canonical spelling "democrat" does.
func PartyFindings(t *precinctcore.Table) []Finding {
	party, ok := t.Column("party")
	if !ok {
		return nil
	}

	values := make(map[string]bool, 8)
	for _, v := range party.Values {
		values[v.String()] = true
	}

	var findings []Finding
	for _, expected := range []string{"democratic", "republican"} {
		if !values[expected] {
			findings = append(findings, Finding{
				Check:  "missing_party",
				Column: "party",
				Detail: fmt.Sprintf("%q not found", expected),
			})
		}
	}
	if values["democrat"] {
		findings = append(findings, Finding{
			Check:  "party_spelling",
			Column: "party",
			Detail: `value "democrat" present, expected "democratic"`,
		})
	}
	return findings
}

// VoteFindings reports vote cells that are missing or never coerced.
func VoteFindings(t *precinctcore.Table) []Finding {
	votes, ok := t.Column("votes")
	if !ok {
		return nil
	}
	bad := 0
	for _, v := range votes.Values {
		if v.IsNull() || v.Kind() == precinctcore.KindUnconvertible {
			bad++
		}
	}
	if bad == 0 {
		return nil
	}
	return []Finding{{
		Check:  "votes",
		Column: "votes",
		Detail: fmt.Sprintf("%d rows without a usable vote count", bad),
	}}
}

// DataverseFindings reports dataverse assignments outside the known
// collections.
func DataverseFindings(t *precinctcore.Table) []Finding {
	assignment, ok := t.Column(precinctcore.DataverseColumn)
	if !ok {
		return nil
	}

	known := make(map[string]bool, len(precinctcore.DataverseShortNames)+1)
	for _, name := range precinctcore.DataverseShortNames {
		known[name] = true
	}
	known[precinctcore.DataverseAll] = true

	unexpected := make(map[string]bool)
	for _, v := range assignment.Values {
		if !known[v.String()] {
			unexpected[v.String()] = true
		}
	}
	if len(unexpected) == 0 {
		return nil
	}
	return []Finding{{
		Check:  "dataverse",
		Column: precinctcore.DataverseColumn,
		Detail: fmt.Sprintf("unexpected values: %s", joinSorted(unexpected)),
	}}
}

// UniqueValues lists the distinct values of the low-cardinality
// columns, for eyeballing a new state's returns.
func UniqueValues(t *precinctcore.Table) map[string]string {
	out := make(map[string]string)
	for _, name := range []string{"dataverse", "district", "mode", "party", "special", "stage", "state", "writein", "year"} {
		column, ok := t.Column(name)
		if !ok {
			continue
		}
		values := make(map[string]bool, 16)
		for _, v := range column.Values {
			values[v.String()] = true
		}
		out[name] = joinSorted(values)
	}
	return out
}

func joinSorted(set map[string]bool) string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, "; ")
}
