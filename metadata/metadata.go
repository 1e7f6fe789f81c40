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

// Package metadata reads the YAML files that describe datasets, their
// dataverse collections and their state coverage.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ElectionDataLab/precinctcore"
)

// VariableNote overrides the note of one registry variable for a
// particular dataset.
type VariableNote struct {
	Name string `yaml:"name"`
	Note string `yaml:"note"`
}

// DatasetMeta describes one published dataset. Most fields are shared
// between datasets through the inherits mechanism.
type DatasetMeta struct {
	Name      string `yaml:"-"` // file stem, e.g. 2016-precinct-president
	Dataverse string `yaml:"dataverse"`
	Title     string `yaml:"title"`

	Description string   `yaml:"description,omitempty"`
	Version     string   `yaml:"version,omitempty"`
	Authors     []string `yaml:"authors,omitempty"`
	License     string   `yaml:"license,omitempty"`
	Citation    string   `yaml:"citation,omitempty"`
	Contact     string   `yaml:"contact,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`

	// Inherits names metadata files under common/ next to this one.
	// Their top-level keys fill in whatever this file leaves unset.
	Inherits []string `yaml:"inherits,omitempty"`

	// Variables lists the registry variables that appear in the
	// dataset, RAlias optionally overrides the derived R object name.
	Variables     []string       `yaml:"variables,omitempty"`
	VariableNotes []VariableNote `yaml:"variable_notes,omitempty"`
	RAlias        string         `yaml:"r_alias,omitempty"`
}

// LoadDatasetMeta reads a dataset metadata file and resolves its
// inherits chain. Keys set in the dataset file always win; inherited
// files only fill gaps, in the order they are listed. An unset version
// becomes today's date.
func LoadDatasetMeta(fileName string) (*DatasetMeta, error) {
	merged, err := readMetaMap(fileName)
	if err != nil {
		return nil, err
	}

	if inherits, ok := merged["inherits"].([]any); ok {
		commonDir := filepath.Join(filepath.Dir(fileName), "common")
		for _, entry := range inherits {
			name, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("inherits entries in %s must be file names", fileName)
			}
			inherited, err := readMetaMap(filepath.Join(commonDir, name))
			if err != nil {
				return nil, fmt.Errorf("failed to resolve inherited metadata %q: %w", name, err)
			}
			for k, v := range inherited {
				if _, exists := merged[k]; !exists {
					merged[k] = v
				}
			}
		}
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to merge metadata for %s: %w", fileName, err)
	}
	var meta DatasetMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s: %w", fileName, err)
	}

	base := filepath.Base(fileName)
	meta.Name = strings.TrimSuffix(base, filepath.Ext(base))
	if meta.Version == "" {
		meta.Version = time.Now().Format("2006-01-02")
	}
	return &meta, nil
}

func readMetaMap(fileName string) (map[string]any, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	return out, nil
}

// DataverseMeta describes the collection a dataset is published in.
type DataverseMeta struct {
	Alias       string `yaml:"alias"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	URL         string `yaml:"url,omitempty"`
}

func LoadDataverseMeta(fileName string) (*DataverseMeta, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	var meta DataverseMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	return &meta, nil
}

// Metadata bundles everything needed to document one dataset.
type Metadata struct {
	Dataset   *DatasetMeta
	Dataverse *DataverseMeta

	// Schema holds the registry subset covering the dataset's
	// variables, with dataset notes applied.
	Schema *precinctcore.Schema

	Coverage Coverage
}

// Load assembles the metadata for a release dataset from a metadata
// directory laid out as:
//
//	<dir>/variables.yaml
//	<dir>/dataset/<year>-precinct-<dataverse>.yaml
//	<dir>/dataset/common/...
//	<dir>/dataverse/<dataverse>.yaml
func Load(dir string, year int, dataverse string) (*Metadata, error) {
	dataset, err := LoadDatasetMeta(filepath.Join(dir, "dataset", fmt.Sprintf("%d-precinct-%s.yaml", year, dataverse)))
	if err != nil {
		return nil, err
	}

	registry, err := precinctcore.LoadSchemaFile(filepath.Join(dir, "variables.yaml"))
	if err != nil {
		return nil, err
	}
	schema := registry
	if len(dataset.Variables) > 0 {
		if schema, err = registry.Subset(dataset.Variables); err != nil {
			return nil, fmt.Errorf("dataset %s: %w", dataset.Name, err)
		}
	}
	if len(dataset.VariableNotes) > 0 {
		notes := make(map[string]string, len(dataset.VariableNotes))
		for _, n := range dataset.VariableNotes {
			notes[n.Name] = n.Note
		}
		schema = schema.WithNotes(notes)
	}

	dataverseMeta, err := LoadDataverseMeta(filepath.Join(dir, "dataverse", dataverse+".yaml"))
	if err != nil {
		return nil, err
	}

	coverage, err := LoadCoverage(filepath.Join(dir, "dataset", "common", "precinct-coverage.yaml"))
	if err != nil {
		return nil, err
	}

	return &Metadata{
		Dataset:   dataset,
		Dataverse: dataverseMeta,
		Schema:    schema,
		Coverage:  coverage,
	}, nil
}
