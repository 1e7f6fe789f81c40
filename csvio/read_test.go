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
	"bytes"
	"reflect"
	"testing"

	"github.com/ElectionDataLab/precinctcore"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantHeader []string
		wantRows   [][]string
	}{
		{
			name:       "plain utf8",
			data:       []byte("precinct,votes\nABSENTEE,120\nWARD 1,33\n"),
			wantHeader: []string{"precinct", "votes"},
			wantRows:   [][]string{{"ABSENTEE", "120"}, {"WARD 1", "33"}},
		},
		{
			name:       "byte order mark stripped",
			data:       append([]byte{0xef, 0xbb, 0xbf}, []byte("precinct,votes\nWARD 1,33\n")...),
			wantHeader: []string{"precinct", "votes"},
			wantRows:   [][]string{{"WARD 1", "33"}},
		},
		{
			// 0xE9 is not valid UTF-8 on its own; Latin-1 maps it to é.
			name:       "latin1 fallback",
			data:       []byte{'p', ',', 'c', '\n', '1', ',', 'P', 0xE9, 'r', 'e', 'z', '\n'},
			wantHeader: []string{"p", "c"},
			wantRows:   [][]string{{"1", "Pérez"}},
		},
		{
			name:       "ragged rows kept verbatim",
			data:       []byte("a,b\n1\n2,3,4\n"),
			wantHeader: []string{"a", "b"},
			wantRows:   [][]string{{"1"}, {"2", "3", "4"}},
		},
		{
			name:       "empty input",
			data:       nil,
			wantHeader: nil,
			wantRows:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse(tt.data, "t")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if table.ID != "t" {
				t.Errorf("ID = %q", table.ID)
			}
			if !reflect.DeepEqual(table.Header, tt.wantHeader) {
				t.Errorf("Header = %v, want %v", table.Header, tt.wantHeader)
			}
			if !reflect.DeepEqual(table.Rows, tt.wantRows) {
				t.Errorf("Rows = %v, want %v", table.Rows, tt.wantRows)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("a,b\n\"unclosed,1\n"), "bad"); err == nil {
		t.Error("Parse() expected error for unclosed quote")
	}
}

func TestTableID(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"AL/final/2016-al-precinct.csv", "2016-al-precinct"},
		{"2016-al-precinct.csv", "2016-al-precinct"},
		{"/data/WI/final/2016-wi-precinct.csv", "2016-wi-precinct"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := TableID(tt.fileName); got != tt.want {
			t.Errorf("TableID(%q) = %q, want %q", tt.fileName, got, tt.want)
		}
	}
}

// A table written by Write must read back and re-check clean against
// the same schema.
func TestWriteReadRoundTrip(t *testing.T) {
	schema, err := precinctcore.NewSchema([]precinctcore.VariableSpec{
		{Name: "precinct", Type: precinctcore.TypeString, NotNull: true},
		{Name: "votes", Type: precinctcore.TypeInteger},
		{Name: "share", Type: precinctcore.TypeFloat},
	})
	if err != nil {
		t.Fatal(err)
	}

	raw := &precinctcore.RawTable{
		ID:     "roundtrip",
		Header: []string{"precinct", "votes", "share"},
		Rows: [][]string{
			{"ABSENTEE", "120", "0.5"},
			{"WARD 1", "", "NA"},
		},
	}
	checked, violations, err := precinctcore.CheckTable(raw, schema, precinctcore.ModeStrict)
	if err != nil {
		t.Fatal(err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}

	var buf bytes.Buffer
	if err := Write(&buf, checked); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	reread, err := Read(&buf, "roundtrip")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	rechecked, violations, err := precinctcore.CheckTable(reread, schema, precinctcore.ModeStrict)
	if err != nil {
		t.Fatal(err)
	}
	if len(violations) != 0 {
		t.Fatalf("round trip violations: %v", violations)
	}
	for i := 0; i < checked.NumRows(); i++ {
		if !reflect.DeepEqual(rechecked.Row(i), checked.Row(i)) {
			t.Errorf("row %d = %v, want %v", i, rechecked.Row(i), checked.Row(i))
		}
	}
}
