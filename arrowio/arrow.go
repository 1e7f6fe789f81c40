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

// Package arrowio moves checked tables in and out of the Arrow IPC
// file format, the interchange format the R packaging step reads.
package arrowio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ElectionDataLab/precinctcore"
)

// arrowType maps a declared column type to its Arrow representation.
func arrowType(t precinctcore.SemanticType) (arrow.DataType, error) {
	switch t {
	case precinctcore.TypeInteger:
		return arrow.PrimitiveTypes.Int64, nil
	case precinctcore.TypeFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case precinctcore.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case precinctcore.TypeString:
		return arrow.BinaryTypes.String, nil
	default:
		return nil, fmt.Errorf("no arrow type for %q", t)
	}
}

// Schema maps a table schema to an Arrow schema. Columns without a
// not-null constraint become nullable fields.
func Schema(s *precinctcore.Schema) (*arrow.Schema, error) {
	variables := s.Variables()
	fields := make([]arrow.Field, len(variables))
	for i, v := range variables {
		dataType, err := arrowType(v.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", v.Name, err)
		}
		fields[i] = arrow.Field{Name: v.Name, Type: dataType, Nullable: !v.NotNull}
	}
	return arrow.NewSchema(fields, nil), nil
}

// Record converts a checked table into one Arrow record. Columns
// holding values that never coerced cannot be represented and are
// reported together, the way a failed write would surface them one by
// one.
func Record(t *precinctcore.Table) (arrow.Record, error) {
	fields := make([]arrow.Field, len(t.Columns))
	for i, column := range t.Columns {
		dataType, err := arrowType(column.Spec.Type)
		if err != nil {
			return nil, fmt.Errorf("table %q column %q: %w", t.ID, column.Spec.Name, err)
		}
		fields[i] = arrow.Field{Name: column.Spec.Name, Type: dataType, Nullable: !column.Spec.NotNull}
	}

	if bad := unconvertibleColumns(t); len(bad) > 0 {
		return nil, fmt.Errorf("table %q has unconvertible values in columns: %s",
			t.ID, strings.Join(bad, ", "))
	}

	builder := array.NewRecordBuilder(memory.NewGoAllocator(), arrow.NewSchema(fields, nil))
	defer builder.Release()

	for i, column := range t.Columns {
		switch column.Spec.Type {
		case precinctcore.TypeInteger:
			b := builder.Field(i).(*array.Int64Builder)
			for _, v := range column.Values {
				if v.IsNull() {
					b.AppendNull()
				} else {
					b.Append(v.Int64())
				}
			}
		case precinctcore.TypeFloat:
			b := builder.Field(i).(*array.Float64Builder)
			for _, v := range column.Values {
				if v.IsNull() {
					b.AppendNull()
				} else {
					b.Append(v.Float64())
				}
			}
		case precinctcore.TypeBoolean:
			b := builder.Field(i).(*array.BooleanBuilder)
			for _, v := range column.Values {
				if v.IsNull() {
					b.AppendNull()
				} else {
					b.Append(v.Bool())
				}
			}
		case precinctcore.TypeString:
			b := builder.Field(i).(*array.StringBuilder)
			for _, v := range column.Values {
				if v.IsNull() {
					b.AppendNull()
				} else {
					b.Append(v.Text())
				}
			}
		}
	}
	return builder.NewRecord(), nil
}

// unconvertibleColumns lists columns that still hold unconvertible
// values, sorted by name.
func unconvertibleColumns(t *precinctcore.Table) []string {
	var bad []string
	for _, column := range t.Columns {
		for _, v := range column.Values {
			if v.Kind() == precinctcore.KindUnconvertible {
				bad = append(bad, column.Spec.Name)
				break
			}
		}
	}
	sort.Strings(bad)
	return bad
}

// Write streams a table as one record into an Arrow IPC file.
func Write(w io.Writer, t *precinctcore.Table) error {
	record, err := Record(t)
	if err != nil {
		return err
	}
	defer record.Release()

	writer, err := ipc.NewFileWriter(w,
		ipc.WithSchema(record.Schema()),
		ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return fmt.Errorf("failed to open arrow writer for table %q: %w", t.ID, err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table %q as arrow: %w", t.ID, err)
	}
	return writer.Close()
}

// WriteFile writes a table to an Arrow IPC file on disk.
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

// Read decodes an Arrow IPC file back into a checked table. The
// schema must describe the columns stored in the file. The reader
// must seek; the IPC file format keeps its footer at the end.
func Read(r ipc.ReadAtSeeker, id string, schema *precinctcore.Schema) (*precinctcore.Table, error) {
	reader, err := ipc.NewFileReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("failed to open arrow file for table %q: %w", id, err)
	}
	defer reader.Close()

	variables := schema.Variables()
	columns := make([]precinctcore.Column, len(variables))
	for i, v := range variables {
		columns[i] = precinctcore.Column{Spec: v}
	}
	arrowSchema := reader.Schema()
	for i, v := range variables {
		indices := arrowSchema.FieldIndices(v.Name)
		if len(indices) != 1 {
			return nil, fmt.Errorf("table %q: column %q not present exactly once", id, v.Name)
		}
		if i != indices[0] {
			return nil, fmt.Errorf("table %q: column %q out of order", id, v.Name)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read arrow record for table %q: %w", id, err)
		}
		for i := range variables {
			appendColumn(&columns[i], record.Column(i))
		}
	}

	return precinctcore.NewTable(id, columns)
}

// ReadFile reads a table back from an Arrow IPC file on disk.
func ReadFile(fileName string, id string, schema *precinctcore.Schema) (*precinctcore.Table, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file, id, schema)
}

func appendColumn(column *precinctcore.Column, data arrow.Array) {
	for i := 0; i < data.Len(); i++ {
		if data.IsNull(i) {
			column.Values = append(column.Values, precinctcore.Null())
			continue
		}
		switch values := data.(type) {
		case *array.Int64:
			column.Values = append(column.Values, precinctcore.Int(values.Value(i)))
		case *array.Float64:
			column.Values = append(column.Values, precinctcore.Float(values.Value(i)))
		case *array.Boolean:
			column.Values = append(column.Values, precinctcore.Bool(values.Value(i)))
		case *array.String:
			column.Values = append(column.Values, precinctcore.Text(values.Value(i)))
		}
	}
}
