// Package parquet_accumulator builds a parquet-go JSON schema string for
// a scan's output columns. Unlike the teacher's row-reflecting
// accumulator, the schema here is derived directly from each column's
// already-resolved target_type — Bind already knows every column's type,
// so there is nothing left to infer from sample rows.
package parquet_accumulator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danthegoodman1/pgscan/typemap"
)

type (
	ParquetSchema struct {
		TagStructs SchemaTag        `json:"-,omitempty"`
		Fields     []*ParquetSchema `json:",omitempty"`
	}

	ParquetJSONSchema struct {
		Tag    string               `json:",omitempty"`
		Fields []*ParquetJSONSchema `json:",omitempty"`
	}

	SchemaTag struct {
		Name           string         `json:"name,omitempty"`
		Type           string         `json:"type,omitempty"`
		ConvertedType  string         `json:"convertedtype,omitempty"`
		RepetitionType RepetitionType `json:"repetitiontype,omitempty"`
		Encoding       string         `json:"encoding,omitempty"`
	}

	RepetitionType string
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

// ColumnSpec names one output column and its resolved target type. It
// mirrors chunk.ColumnSpec's shape without importing chunk, so this
// package has no dependency on the Arrow builder.
type ColumnSpec struct {
	Name string
	Type typemap.TargetType
}

// NewSchema builds the parquet-go JSON schema tree for cols, in column
// order, failing on the first column whose target type has no parquet
// representation wired up.
func NewSchema(cols []ColumnSpec) (*ParquetSchema, error) {
	root := &ParquetSchema{TagStructs: SchemaTag{Name: "parquet_go_root", RepetitionType: Required}}
	for _, c := range cols {
		field, err := fieldSchema(c.Name, c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		root.Fields = append(root.Fields, field)
	}
	return root, nil
}

func fieldSchema(name string, t typemap.TargetType) (*ParquetSchema, error) {
	field := &ParquetSchema{TagStructs: SchemaTag{Name: name, RepetitionType: Optional}}

	switch t.Kind {
	case typemap.BOOL:
		field.TagStructs.Type = "BOOLEAN"
	case typemap.I16, typemap.I32, typemap.ENUM, typemap.DATE:
		field.TagStructs.Type = "INT32"
		if t.Kind == typemap.DATE {
			field.TagStructs.ConvertedType = "DATE"
		}
	case typemap.U32:
		field.TagStructs.Type = "INT32"
		field.TagStructs.ConvertedType = "UINT_32"
	case typemap.I64, typemap.TIME, typemap.TIME_TZ, typemap.TIMESTAMP, typemap.TIMESTAMP_TZ:
		field.TagStructs.Type = "INT64"
		if t.Kind == typemap.TIMESTAMP || t.Kind == typemap.TIMESTAMP_TZ {
			field.TagStructs.ConvertedType = "TIMESTAMP_MICROS"
		}
	case typemap.F32:
		field.TagStructs.Type = "FLOAT"
	case typemap.F64:
		field.TagStructs.Type = "DOUBLE"
	case typemap.DECIMAL:
		// Widened to DOUBLE: a faithful DECIMAL logical type needs a
		// byte-array backing with a fixed precision/scale writer that
		// isn't wired up here.
		field.TagStructs.Type = "DOUBLE"
	case typemap.TEXT, typemap.UUID, typemap.JSONB:
		field.TagStructs.Type = "BYTE_ARRAY"
		field.TagStructs.ConvertedType = "UTF8"
		field.TagStructs.Encoding = "PLAIN"
	case typemap.BLOB, typemap.INTERVAL:
		field.TagStructs.Type = "BYTE_ARRAY"
	case typemap.LIST:
		if t.ElementType == nil {
			return nil, fmt.Errorf("LIST column missing element type")
		}
		field.TagStructs.Type = "LIST"
		elem, err := fieldSchema("Element", *t.ElementType)
		if err != nil {
			return nil, err
		}
		field.Fields = append(field.Fields, elem)
	default:
		return nil, fmt.Errorf("unmapped target kind %q", t.Kind)
	}

	return field, nil
}

// GetColumnNames returns the top-level column names in schema order.
func (ps *ParquetSchema) GetColumnNames() []string {
	var cols []string
	for _, field := range ps.Fields {
		cols = append(cols, field.TagStructs.Name)
	}
	return cols
}

// ToParquetJSONSchema recursively converts the tag-struct tree into the
// flat "key=value, key=value" tag strings parquet-go's JSON schema
// parser expects.
func (ps *ParquetSchema) ToParquetJSONSchema() *ParquetJSONSchema {
	var tagArr []string
	if ps.TagStructs.Type != "" {
		tagArr = append(tagArr, "type="+ps.TagStructs.Type)
	}
	if ps.TagStructs.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+ps.TagStructs.ConvertedType)
	}
	if ps.TagStructs.Encoding != "" {
		tagArr = append(tagArr, "encoding="+ps.TagStructs.Encoding)
	}
	if ps.TagStructs.Name != "" {
		tagArr = append(tagArr, "name="+ps.TagStructs.Name)
	}
	if string(ps.TagStructs.RepetitionType) != "" {
		tagArr = append(tagArr, "repetitiontype="+string(ps.TagStructs.RepetitionType))
	}
	var fields []*ParquetJSONSchema
	for _, field := range ps.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	return &ParquetJSONSchema{
		Tag:    strings.Join(tagArr, ", "),
		Fields: fields,
	}
}

// GetSchemaString returns the JSON-formatted schema string
// writer.NewJSONWriterFromWriter expects.
func (ps *ParquetSchema) GetSchemaString() (string, error) {
	pjs := ps.ToParquetJSONSchema()
	b, err := json.Marshal(pjs)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}
