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
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ElectionDataLab/precinctcore"
)

// Write renders a typed table as CSV: a header row, then data rows in
// canonical textual form with nulls as empty cells. Output written
// this way reads back and re-checks clean.
func Write(w io.Writer, t *precinctcore.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := 0; i < t.NumRows(); i++ {
		if err := writer.Write(t.Row(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes a typed table to a CSV file.
func WriteFile(fileName string, t *precinctcore.Table) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err := Write(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
