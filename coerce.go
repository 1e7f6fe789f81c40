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

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NullMarkers are the cell spellings read as missing values. Markers
// match the raw cell exactly; surrounding whitespace defeats them.
var NullMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

var nullMarkerSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(NullMarkers))
	for _, s := range NullMarkers {
		m[s] = struct{}{}
	}
	return m
}()

// IsNullMarker reports whether the raw cell spells a missing value.
func IsNullMarker(raw string) bool {
	_, ok := nullMarkerSet[raw]
	return ok
}

var boolVocab = map[string]bool{
	"TRUE": true, "True": true, "true": true, "1": true,
	"FALSE": false, "False": false, "false": false, "0": false,
}

// Coerce converts a raw cell to a typed value. Null markers become the
// null value for every type. On failure the returned value is
// unconvertible and carries the raw cell.
//
// Integers also accept floating-point spellings with no fractional
// part, so "5.0" coerces to 5. Numeric and boolean cells tolerate
// surrounding whitespace; string cells are kept verbatim.
func Coerce(raw string, t SemanticType) (Value, error) {
	if IsNullMarker(raw) {
		return Null(), nil
	}
	switch t {
	case TypeString:
		return Text(raw), nil
	case TypeInteger:
		s := strings.TrimSpace(raw)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return Unconvertible(raw), fmt.Errorf("cannot coerce %q to integer", raw)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return Unconvertible(raw), fmt.Errorf("integer %q out of range", raw)
		}
		return Int(int64(f)), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Unconvertible(raw), fmt.Errorf("cannot coerce %q to float", raw)
		}
		return Float(f), nil
	case TypeBoolean:
		if b, ok := boolVocab[strings.TrimSpace(raw)]; ok {
			return Bool(b), nil
		}
		return Unconvertible(raw), fmt.Errorf("cannot coerce %q to boolean", raw)
	default:
		return Unconvertible(raw), fmt.Errorf("unknown type %q", t)
	}
}

// CoercionFailure records one cell that could not be coerced. Row is
// zero-based over the data rows.
type CoercionFailure struct {
	Row     int
	Raw     string
	Message string
}

// CoerceColumn coerces every cell of a column, collecting failures
// instead of stopping at the first. Failed cells surface as
// unconvertible values at their original positions.
func CoerceColumn(raw []string, t SemanticType) ([]Value, []CoercionFailure) {
	values := make([]Value, len(raw))
	var failures []CoercionFailure
	for row, cell := range raw {
		v, err := Coerce(cell, t)
		values[row] = v
		if err != nil {
			failures = append(failures, CoercionFailure{Row: row, Raw: cell, Message: err.Error()})
		}
	}
	return values, failures
}
