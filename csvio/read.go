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

// Package csvio reads and writes precinct returns tables as CSV and
// discovers them on disk.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ElectionDataLab/precinctcore"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Parse decodes CSV bytes into a raw table. Bytes that are not valid
// UTF-8 are decoded as Latin-1, which covers the encodings seen in
// state raw data. Cells are kept verbatim; ragged rows are kept too
// and reported later by the table check.
func Parse(data []byte, id string) (*precinctcore.RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode table %q: %w", id, err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse table %q: %w", id, err)
	}

	table := &precinctcore.RawTable{ID: id}
	if len(records) > 0 {
		table.Header = records[0]
		table.Rows = records[1:]
	}
	return table, nil
}

// Read parses a CSV stream into a raw table.
func Read(r io.Reader, id string) (*precinctcore.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %q: %w", id, err)
	}
	return Parse(data, id)
}

// ReadFile reads one CSV file. The table id is the file name without
// its extension.
func ReadFile(fileName string) (*precinctcore.RawTable, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	return Parse(data, TableID(fileName))
}

// TableID derives a table id from a file name, so
// "AL/final/2016-al-precinct.csv" becomes "2016-al-precinct".
func TableID(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
