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
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// StateFile locates the final returns CSV of one state.
type StateFile struct {
	State string // postal abbreviation, upper case
	Year  int
	Path  string
}

// stateFilePattern matches final returns paths relative to the data
// root, such as "AL/final/2016-al-precinct.csv".
var stateFilePattern = regexp.MustCompile(`^([A-Z]{2})/final/(\d{4})-([a-z]{2})-precinct\.csv$`)

// DiscoverStateFiles walks the data root for final state returns. The
// state directory and the file postal must agree; year 0 matches any
// year. Results come back sorted by state and year.
func DiscoverStateFiles(root string, year int) ([]StateFile, error) {
	matches, err := doublestar.Glob(os.DirFS(root), "*/final/*-precinct.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for state files: %w", root, err)
	}

	var files []StateFile
	for _, rel := range matches {
		m := stateFilePattern.FindStringSubmatch(filepath.ToSlash(rel))
		if m == nil {
			continue
		}
		if !strings.EqualFold(m[1], m[3]) {
			continue
		}
		y, _ := strconv.Atoi(m[2])
		if year != 0 && y != year {
			continue
		}
		files = append(files, StateFile{State: m[1], Year: y, Path: filepath.Join(root, filepath.FromSlash(rel))})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].State != files[j].State {
			return files[i].State < files[j].State
		}
		return files[i].Year < files[j].Year
	})
	return files, nil
}

// StateFilePath returns the conventional location of a final state
// CSV under the data root.
func StateFilePath(root, postal string, year int) string {
	return filepath.Join(root,
		strings.ToUpper(postal),
		"final",
		fmt.Sprintf("%d-%s-precinct.csv", year, strings.ToLower(postal)))
}
