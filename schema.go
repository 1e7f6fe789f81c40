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
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SemanticType is the declared type of a variable.
type SemanticType string

const (
	TypeInteger SemanticType = "integer"
	TypeFloat   SemanticType = "float"
	TypeString  SemanticType = "string"
	TypeBoolean SemanticType = "boolean"
)

func validSemanticType(t SemanticType) bool {
	switch t {
	case TypeInteger, TypeFloat, TypeString, TypeBoolean:
		return true
	default:
		return false
	}
}

// VariableSpec declares one column of a release dataset.
type VariableSpec struct {
	Name string       `yaml:"name"`
	Type SemanticType `yaml:"type"`

	// NotNull requires every coerced value in the column to be non-missing.
	NotNull bool `yaml:"not_null,omitempty"`

	// AllowedValues restricts the column to a fixed vocabulary, compared by
	// canonical textual form. Empty means unconstrained.
	AllowedValues []string `yaml:"values,omitempty"`

	Description string `yaml:"description,omitempty"`
	Note        string `yaml:"note,omitempty"`
}

// Allows reports whether the rendered value is permitted by the variable's
// domain. An empty AllowedValues set allows everything.
func (v VariableSpec) Allows(rendered string) bool {
	if len(v.AllowedValues) == 0 {
		return true
	}
	for _, allowed := range v.AllowedValues {
		if rendered == allowed {
			return true
		}
	}
	return false
}

// UnmarshalYAML accepts either the full mapping form
//
//	- name: stage
//	  type: string
//	  values: [gen, pri]
//
// or the single-pair shorthand
//
//	- votes: integer not_null
//
// where the value is a type expression: the semantic type optionally
// followed by a "not_null" token.
func (v *VariableSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) < 2 {
		return fmt.Errorf("variable entry must be a mapping, got %v", node.Kind)
	}

	key := node.Content[0].Value
	if len(node.Content) == 2 && !knownVariableField(key) {
		if node.Content[1].Kind != yaml.ScalarNode {
			return fmt.Errorf("variable %q: shorthand value must be a scalar type expression", key)
		}
		spec, err := parseTypeExpr(node.Content[1].Value)
		if err != nil {
			return fmt.Errorf("variable %q: %v", key, err)
		}
		spec.Name = key
		*v = spec
		return nil
	}

	// Full form. Decode through an alias to avoid recursing into this method.
	type plainSpec VariableSpec
	var spec plainSpec
	if err := node.Decode(&spec); err != nil {
		return err
	}
	*v = VariableSpec(spec)
	return nil
}

func knownVariableField(key string) bool {
	switch key {
	case "name", "type", "not_null", "values", "description", "note":
		return true
	default:
		return false
	}
}

// parseTypeExpr parses a compact type expression such as "integer" or
// "integer not_null".
func parseTypeExpr(expression string) (VariableSpec, error) {
	var spec VariableSpec

	fields := strings.Fields(expression)
	if len(fields) == 0 {
		return spec, fmt.Errorf("empty type expression")
	}

	spec.Type = SemanticType(fields[0])
	for _, modifier := range fields[1:] {
		switch modifier {
		case "not_null":
			spec.NotNull = true
		default:
			return spec, fmt.Errorf("unknown modifier %q in type expression", modifier)
		}
	}

	return spec, nil
}

// Schema is the ordered, immutable registry of variable declarations shared
// by the coercer, the checker and the assembler. Construct it once per run;
// it has no mutation methods and is safe for concurrent readers.
type Schema struct {
	vars  []VariableSpec
	index map[string]int
}

// NewSchema builds a registry from an ordered list of declarations. It
// fails with a *SchemaError on an empty or duplicate name or an
// unrecognized semantic type.
func NewSchema(vars []VariableSpec) (*Schema, error) {
	s := &Schema{
		vars:  make([]VariableSpec, len(vars)),
		index: make(map[string]int, len(vars)),
	}
	copy(s.vars, vars)

	for i, v := range s.vars {
		if v.Name == "" {
			return nil, &SchemaError{Reason: fmt.Sprintf("variable at position %d has no name", i)}
		}
		if !validSemanticType(v.Type) {
			return nil, &SchemaError{Variable: v.Name, Reason: fmt.Sprintf("unrecognized semantic type %q", v.Type)}
		}
		if _, dup := s.index[v.Name]; dup {
			return nil, &SchemaError{Variable: v.Name, Reason: "declared more than once"}
		}
		s.index[v.Name] = i
	}

	return s, nil
}

// Len returns the number of declared variables.
func (s *Schema) Len() int {
	return len(s.vars)
}

// Lookup returns the declaration for a name, if any.
func (s *Schema) Lookup(name string) (VariableSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return VariableSpec{}, false
	}
	return s.vars[i], true
}

// Variables returns a copy of the declarations in registry order.
func (s *Schema) Variables() []VariableSpec {
	out := make([]VariableSpec, len(s.vars))
	copy(out, s.vars)
	return out
}

// Names returns the declared column names in registry order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.vars))
	for i, v := range s.vars {
		out[i] = v.Name
	}
	return out
}

// Subset returns a new registry holding only the named variables, in the
// order this registry declares them (not the order of the argument). It
// fails with a *SchemaError if a name is not declared.
func (s *Schema) Subset(names []string) (*Schema, error) {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := s.index[name]; !ok {
			return nil, &SchemaError{Variable: name, Reason: "not declared in the registry"}
		}
		want[name] = true
	}

	var vars []VariableSpec
	for _, v := range s.vars {
		if want[v.Name] {
			vars = append(vars, v)
		}
	}
	return NewSchema(vars)
}

// WithNotes returns a copy of the registry with per-variable notes
// overridden. Names absent from the registry are ignored, matching the
// dataset metadata semantics where notes annotate a subset of variables.
func (s *Schema) WithNotes(notes map[string]string) *Schema {
	vars := s.Variables()
	for i := range vars {
		if note, ok := notes[vars[i].Name]; ok {
			vars[i].Note = note
		}
	}
	out, err := NewSchema(vars)
	if err != nil {
		// The receiver already validated; overriding notes cannot break it.
		panic(err)
	}
	return out
}

// SchemaFile is the on-disk YAML form of a variable registry.
type SchemaFile struct {
	Version   string         `yaml:"version"`
	Variables []VariableSpec `yaml:"variables"`
}

// ParseSchema builds a registry from YAML bytes.
func ParseSchema(data []byte) (*Schema, error) {
	var file SchemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema yaml: %w", err)
	}
	if len(file.Variables) == 0 {
		return nil, &SchemaError{Reason: "schema file declares no variables"}
	}
	return NewSchema(file.Variables)
}

// LoadSchemaFile reads a variable registry from a YAML file.
func LoadSchemaFile(fileName string) (*Schema, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	return ParseSchema(data)
}
