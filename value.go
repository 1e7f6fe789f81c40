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

import "strconv"

// Kind identifies the runtime type of a Value.
type Kind uint8

const (
	// KindNull is the canonical missing value. Every recognized null marker
	// in the raw input ("", NA, NaN, ...) coerces to this single kind.
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
	KindBool
	// KindUnconvertible marks a cell whose raw content could not be coerced
	// to the column's declared type. The original text is preserved so the
	// violation report can show it.
	KindUnconvertible
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "string"
	case KindBool:
		return "boolean"
	case KindUnconvertible:
		return "unconvertible"
	default:
		return "unknown"
	}
}

// Value is a cell of a coerced table: exactly one of null, integer, float,
// text, boolean or an unconvertible marker. The zero Value is the canonical
// null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// Null returns the canonical missing value.
func Null() Value {
	return Value{kind: KindNull}
}

// Int returns an integer value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Float returns a float value.
func Float(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// Text returns a string value.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Unconvertible marks a raw cell that failed coercion, keeping its original
// text for reporting.
func Unconvertible(raw string) Value {
	return Value{kind: KindUnconvertible, s: raw}
}

// Kind reports the runtime type of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is the canonical null. An unconvertible
// marker is not null; it is reported as a coercion violation instead.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Int64 returns the integer payload. Valid only for KindInt.
func (v Value) Int64() int64 {
	return v.i
}

// Float64 returns the numeric payload as a float. Integers widen.
func (v Value) Float64() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Text returns the string payload. Valid only for KindText.
func (v Value) Text() string {
	return v.s
}

// Bool returns the boolean payload. Valid only for KindBool.
func (v Value) Bool() bool {
	return v.b
}

// Raw returns the original input text of an unconvertible cell.
func (v Value) Raw() string {
	return v.s
}

// String renders the canonical textual form of the value: nulls render as
// the empty string, booleans as TRUE/FALSE, numbers in their shortest exact
// representation. Domain constraints and CSV output both compare against
// this form.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindUnconvertible:
		return v.s
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindText, KindUnconvertible:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	default:
		return false
	}
}

// Compare orders two values of the same column: nulls sort after everything
// else, numerics compare by magnitude, text lexicographically and booleans
// false before true. Mixed kinds fall back to their textual form.
func (v Value) Compare(o Value) int {
	if v.kind == KindNull || o.kind == KindNull {
		switch {
		case v.kind == o.kind:
			return 0
		case v.kind == KindNull:
			return 1
		default:
			return -1
		}
	}

	if isNumericKind(v.kind) && isNumericKind(o.kind) {
		a, b := v.Float64(), o.Float64()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}

	if v.kind == KindBool && o.kind == KindBool {
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		default:
			return 1
		}
	}

	a, b := v.String(), o.String()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isNumericKind(k Kind) bool {
	return k == KindInt || k == KindFloat
}
