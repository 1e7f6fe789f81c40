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

// Package codebook renders dataset documentation: the Markdown
// codebook, release and coverage notes, R help files and a
// machine-readable JSON variant, all filled from dataset metadata.
package codebook

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/goccy/go-json"

	"github.com/ElectionDataLab/precinctcore"
	"github.com/ElectionDataLab/precinctcore/metadata"
)

// Codebook holds everything the documentation templates draw from.
type Codebook struct {
	Dataset   *metadata.DatasetMeta
	Dataverse *metadata.DataverseMeta
	Variables []precinctcore.VariableSpec
	Coverage  metadata.Coverage
}

// Build assembles a codebook from loaded dataset metadata.
func Build(meta *metadata.Metadata) *Codebook {
	return &Codebook{
		Dataset:   meta.Dataset,
		Dataverse: meta.Dataverse,
		Variables: meta.Schema.Variables(),
		Coverage:  meta.Coverage,
	}
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"code": FormatCode,
	"required": func(v precinctcore.VariableSpec) string {
		if v.NotNull {
			return "yes"
		}
		return "no"
	},
	"values": func(v precinctcore.VariableSpec) string {
		quoted := make([]string, len(v.AllowedValues))
		for i, value := range v.AllowedValues {
			quoted[i] = "`" + value + "`"
		}
		return strings.Join(quoted, ", ")
	},
}

var codebookTemplate = template.Must(template.New("codebook").Funcs(templateFuncs).Parse(
	"# Codebook for {{.Dataset.Title}}\n" +
		"\n" +
		"Version {{.Dataset.Version}}.\n" +
		"\n" +
		"{{.Dataset.Description}}\n" +
		"\n" +
		"## About\n" +
		"\n" +
		"- Dataverse: [{{.Dataverse.Title}}]({{.Dataverse.URL}})\n" +
		"- Authors: {{join .Dataset.Authors \", \"}}\n" +
		"- License: {{.Dataset.License}}\n" +
		"- Contact: {{.Dataset.Contact}}\n" +
		"\n" +
		"To cite the data:\n" +
		"\n" +
		"> {{.Dataset.Citation}}\n" +
		"\n" +
		"## Variables\n" +
		"\n" +
		"The dataset contains {{len .Variables}} variables.\n" +
		"{{range .Variables}}\n" +
		"### {{.Name}}\n" +
		"\n" +
		"{{.Description}}\n" +
		"\n" +
		"- Type: {{.Type}}\n" +
		"- Required: {{required .}}\n" +
		"{{if .AllowedValues}}- Values: {{values .}}\n" +
		"{{end}}{{if .Note}}\n" +
		"> {{.Note}}\n" +
		"{{end}}{{end}}"))

// Markdown renders the full codebook.
func (c *Codebook) Markdown() (string, error) {
	return render(codebookTemplate, c)
}

var releaseNotesTemplate = template.Must(template.New("release_notes").Funcs(templateFuncs).Parse(
	"# Release notes for {{.Dataset.Title}}\n" +
		"\n" +
		"This release is version {{.Dataset.Version}} of the dataset.\n" +
		"\n" +
		"{{.Dataset.Description}}\n" +
		"\n" +
		"The codebook describes each of the variables in the dataset.\n" +
		"Please direct questions and comments to {{.Dataset.Contact}}.\n"))

// ReleaseNotes renders the short release notes document.
func (c *Codebook) ReleaseNotes() (string, error) {
	return render(releaseNotesTemplate, c)
}

var coverageNotesTemplate = template.Must(template.New("coverage_notes").Funcs(templateFuncs).Parse(
	"# State coverage of {{.Dataset.Title}}\n" +
		"\n" +
		"The dataset covers the following states:\n" +
		"{{range .Included}}\n" +
		"- {{.State}}{{if .Source}} (source: {{.Source}}){{end}}\n" +
		"{{- end}}\n" +
		"{{if .Pending}}\n" +
		"Returns for these states are not included yet:\n" +
		"{{range .Pending}}\n" +
		"- {{.State}}{{if .Note}}: {{.Note}}{{end}}\n" +
		"{{- end}}\n" +
		"{{end}}"))

// CoverageNotes renders the per-state coverage document.
func (c *Codebook) CoverageNotes() (string, error) {
	var included, pending []metadata.StateCoverage
	for _, postal := range c.Coverage.Postals() {
		state := c.Coverage[postal]
		if state.Included {
			included = append(included, state)
		} else {
			pending = append(pending, state)
		}
	}
	return render(coverageNotesTemplate, struct {
		Dataset  *metadata.DatasetMeta
		Included []metadata.StateCoverage
		Pending  []metadata.StateCoverage
	}{c.Dataset, included, pending})
}

// Rd markup is full of braces, so this template uses << >> delimiters.
var rdDocTemplate = template.Must(template.New("r_doc").Funcs(templateFuncs).Delims("<<", ">>").Parse(
	"\\name{<<.Alias>>}\n" +
		"\\docType{data}\n" +
		"\\alias{<<.Alias>>}\n" +
		"\\title{<<.Dataset.Title>>}\n" +
		"\\description{<<code .Dataset.Description>>}\n" +
		"\\usage{data(<<.Alias>>)}\n" +
		"\\format{A data frame with <<len .Variables>> variables:\n" +
		"\\describe{\n" +
		"<<range .Variables>>\\item{\\code{<<.Name>>}}{<<code .Description>>}\n" +
		"<<end>>}}\n" +
		"\\source{<<.Dataverse.URL>>}\n" +
		"\\keyword{datasets}\n"))

// RdDoc renders the R help file for the dataset's rda object.
func (c *Codebook) RdDoc() (string, error) {
	return render(rdDocTemplate, struct {
		*Codebook
		Alias string
	}{c, c.RAlias()})
}

// RAlias returns the R object name for the dataset, either the
// explicit override from metadata or one derived from the dataset
// name, so "2016-precinct-house" becomes "precinct_house_2016".
func (c *Codebook) RAlias() string {
	if c.Dataset.RAlias != "" {
		return c.Dataset.RAlias
	}
	return RAlias(c.Dataset.Name)
}

var (
	separatorRe = regexp.MustCompile(`[- ]`)
	leadDigitRe = regexp.MustCompile(`([0-9]*)(_*)(.*)`)
	backtickRe  = regexp.MustCompile("`([^`]+)`")
)

// RAlias translates a dataset name to a valid R object name by moving
// leading digits to the end.
func RAlias(name string) string {
	if name == "" {
		return ""
	}
	underscored := separatorRe.ReplaceAllString(name, "_")
	return leadDigitRe.ReplaceAllString(underscored, "${3}${2}${1}")
}

// FormatCode rewrites Markdown `code` spans as Rd \code{} macros.
func FormatCode(text string) string {
	return backtickRe.ReplaceAllString(text, `\code{${1}}`)
}

// jsonVariable is the machine-readable form of one variable entry.
type jsonVariable struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Values      []string `json:"values,omitempty"`
	Description string   `json:"description,omitempty"`
	Note        string   `json:"note,omitempty"`
}

// JSON renders a machine-readable codebook.
func (c *Codebook) JSON() ([]byte, error) {
	variables := make([]jsonVariable, len(c.Variables))
	for i, v := range c.Variables {
		variables[i] = jsonVariable{
			Name:        v.Name,
			Type:        string(v.Type),
			Required:    v.NotNull,
			Values:      v.AllowedValues,
			Description: v.Description,
			Note:        v.Note,
		}
	}
	doc := struct {
		Name      string         `json:"name"`
		Title     string         `json:"title"`
		Version   string         `json:"version"`
		Dataverse string         `json:"dataverse"`
		License   string         `json:"license,omitempty"`
		Citation  string         `json:"citation,omitempty"`
		Variables []jsonVariable `json:"variables"`
	}{
		Name:      c.Dataset.Name,
		Title:     c.Dataset.Title,
		Version:   c.Dataset.Version,
		Dataverse: c.Dataset.Dataverse,
		License:   c.Dataset.License,
		Citation:  c.Dataset.Citation,
		Variables: variables,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render JSON codebook: %w", err)
	}
	return data, nil
}

// CheckDocumentation asserts that the released columns and the
// documented variables match exactly, in both directions.
func CheckDocumentation(columns []string, schema *precinctcore.Schema) error {
	documented := make(map[string]bool, schema.Len())
	for _, name := range schema.Names() {
		documented[name] = true
	}
	released := make(map[string]bool, len(columns))
	for _, name := range columns {
		released[name] = true
	}

	var undocumented, missing []string
	for _, name := range columns {
		if !documented[name] {
			undocumented = append(undocumented, name)
		}
	}
	for _, name := range schema.Names() {
		if !released[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(undocumented)
	sort.Strings(missing)

	var problems []string
	if len(undocumented) > 0 {
		problems = append(problems, fmt.Sprintf("undocumented variables in the data: %s", strings.Join(undocumented, ", ")))
	}
	if len(missing) > 0 {
		problems = append(problems, fmt.Sprintf("documented variables missing from the data: %s", strings.Join(missing, ", ")))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
