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

// SchemaError reports a malformed variable registry: a duplicate name, an
// unrecognized semantic type, or a reference to an undeclared variable.
// A SchemaError is fatal for the whole run; no validation can proceed
// without a usable registry.
type SchemaError struct {
	Variable string
	Reason   string
}

func (e *SchemaError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	return fmt.Sprintf("schema error: variable %q: %s", e.Variable, e.Reason)
}

// StructuralError reports a raw table whose shape is unusable: ragged
// column lengths, duplicate or empty column names. It is fatal for that
// table only; the run continues with the remaining tables and the failure
// is recorded as a structural violation.
type StructuralError struct {
	TableID string
	Reason  string
}

func (e *StructuralError) Error() string {
	if e.TableID == "" {
		return fmt.Sprintf("structural error: %s", e.Reason)
	}
	return fmt.Sprintf("structural error in table %q: %s", e.TableID, e.Reason)
}
