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

// Rule identifies the check a violation comes from.
type Rule string

const (
	RuleCoercion         Rule = "coercion"
	RuleNotNull          Rule = "not_null"
	RuleDomain           Rule = "domain"
	RuleMissingColumn    Rule = "missing_column"
	RuleUnexpectedColumn Rule = "unexpected_column"
	RuleStructural       Rule = "structural"
)

// Severity grades a violation. Errors block a table from release
// datasets; warnings are reported and nothing more.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Severity returns the grade of violations raised by the rule.
// Undeclared columns are the only warning; every other rule points at
// data that cannot be released as-is.
func (r Rule) Severity() Severity {
	if r == RuleUnexpectedColumn {
		return SeverityWarning
	}
	return SeverityError
}

// Blocking reports whether violations of the rule exclude the table
// from assembled datasets.
func (r Rule) Blocking() bool {
	return r.Severity() == SeverityError
}

// TableLevelRow marks violations that concern the table as a whole
// rather than a single cell.
const TableLevelRow = -1

// Violation is one finding against one table. Row is zero-based over
// the data rows, or TableLevelRow for table-level findings.
type Violation struct {
	TableID  string   `json:"table_id"`
	Row      int      `json:"row"`
	Column   string   `json:"column,omitempty"`
	Rule     Rule     `json:"rule"`
	Severity Severity `json:"severity"`
	Raw      string   `json:"raw,omitempty"`
	Message  string   `json:"message"`
}

// Blocking reports whether the violation excludes its table from
// assembled datasets.
func (v Violation) Blocking() bool {
	return v.Rule.Blocking()
}

func (v Violation) String() string {
	loc := v.TableID
	if v.Column != "" {
		loc += ", column " + v.Column
	}
	if v.Row != TableLevelRow {
		loc += fmt.Sprintf(", row %d", v.Row)
	}
	return fmt.Sprintf("%s [%s]: %s", loc, v.Rule, v.Message)
}
