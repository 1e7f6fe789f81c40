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

package metadata

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// StateCoverage records whether one state's returns are ready for
// release, plus provenance notes for the codebook.
type StateCoverage struct {
	State    string `yaml:"state"` // full name
	Included bool   `yaml:"included"`
	Source   string `yaml:"source,omitempty"`
	Note     string `yaml:"note,omitempty"`
}

// Coverage maps state postal abbreviations to their release status.
type Coverage map[string]StateCoverage

func LoadCoverage(fileName string) (Coverage, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	coverage := make(Coverage)
	if err := yaml.Unmarshal(data, &coverage); err != nil {
		return nil, fmt.Errorf("failed to parse coverage file %s: %w", fileName, err)
	}
	return coverage, nil
}

// IncludedPostals returns the postal abbreviations of states marked
// ready for release, sorted.
func (c Coverage) IncludedPostals() []string {
	var postals []string
	for postal, state := range c {
		if state.Included {
			postals = append(postals, postal)
		}
	}
	sort.Strings(postals)
	return postals
}

// Postals returns every covered postal abbreviation, sorted.
func (c Coverage) Postals() []string {
	postals := make([]string, 0, len(c))
	for postal := range c {
		postals = append(postals, postal)
	}
	sort.Strings(postals)
	return postals
}
