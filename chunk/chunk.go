// Package chunk accumulates decoded tuple values into columnar output
// chunks backed by Arrow array builders, one builder per column, the
// concrete realization of the columnar output chunk the rest of this
// module only talks about in the abstract.
package chunk

import (
	"fmt"
	"time"

	"github.com/apache/arrow/go/arrow"
	"github.com/apache/arrow/go/arrow/array"
	"github.com/apache/arrow/go/arrow/decimal128"
	"github.com/apache/arrow/go/arrow/memory"

	"github.com/danthegoodman1/pgscan/pgwire"
	"github.com/danthegoodman1/pgscan/typemap"
)

// ColumnSpec names one output column and its resolved target type.
type ColumnSpec struct {
	Name string
	Type typemap.TargetType
}

// NewSchema builds the Arrow schema for a sequence of resolved columns.
// Enum columns carry their label set as field metadata ("labels", a
// comma-joined list) since Arrow has no enum type of its own; the ordinal
// decoded off the wire is what actually lands in the column.
func NewSchema(cols []ColumnSpec) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		dt, err := arrowType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		field := arrow.Field{Name: c.Name, Type: dt, Nullable: true}
		if c.Type.Kind == typemap.ENUM {
			field.Metadata = arrow.NewMetadata([]string{"labels"}, []string{joinLabels(c.Type.EnumLabels)})
		}
		fields[i] = field
	}
	schema := arrow.NewSchema(fields, nil)
	return schema, nil
}

func joinLabels(labels []string) string {
	out := ""
	for i, l := range labels {
		if i > 0 {
			out += ","
		}
		out += l
	}
	return out
}

func arrowType(t typemap.TargetType) (arrow.DataType, error) {
	switch t.Kind {
	case typemap.BOOL:
		return arrow.FixedWidthTypes.Boolean, nil
	case typemap.I16:
		return arrow.PrimitiveTypes.Int16, nil
	case typemap.I32:
		return arrow.PrimitiveTypes.Int32, nil
	case typemap.I64:
		return arrow.PrimitiveTypes.Int64, nil
	case typemap.U32:
		return arrow.PrimitiveTypes.Uint32, nil
	case typemap.F32:
		return arrow.PrimitiveTypes.Float32, nil
	case typemap.F64:
		return arrow.PrimitiveTypes.Float64, nil
	case typemap.DECIMAL:
		width, scale := t.DecimalWidth, t.DecimalScale
		if width <= 0 {
			width = 38
		}
		return &arrow.Decimal128Type{Precision: int32(width), Scale: int32(scale)}, nil
	case typemap.TEXT, typemap.JSONB:
		return arrow.BinaryTypes.String, nil
	case typemap.DATE:
		return arrow.FixedWidthTypes.Date32, nil
	case typemap.BLOB:
		return arrow.BinaryTypes.Binary, nil
	case typemap.TIME:
		return arrow.FixedWidthTypes.Time64us, nil
	case typemap.TIME_TZ:
		// usec-since-midnight plus tz offset folded into one int64, per
		// the wire codec's DecodeTimeTZ; Arrow has no tz-aware time type.
		return arrow.PrimitiveTypes.Int64, nil
	case typemap.TIMESTAMP:
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case typemap.TIMESTAMP_TZ:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	case typemap.INTERVAL:
		return arrow.FixedWidthTypes.MonthDayNanoInterval, nil
	case typemap.UUID:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}, nil
	case typemap.ENUM:
		return arrow.PrimitiveTypes.Int32, nil
	case typemap.LIST:
		if t.ElementType == nil {
			return nil, fmt.Errorf("LIST column missing element type")
		}
		elemType, err := arrowType(*t.ElementType)
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elemType), nil
	default:
		return nil, fmt.Errorf("unmapped target kind %q", t.Kind)
	}
}

// Builder accumulates rows into one in-progress chunk.
type Builder struct {
	schema   *arrow.Schema
	cols     []ColumnSpec
	rb       *array.RecordBuilder
	mem      memory.Allocator
	capacity int
}

// NewBuilder allocates a fresh chunk builder for the given columns, with
// row capacity only advisory — callers decide when to call Build based on
// NumRows, this just sizes the initial Arrow buffers.
func NewBuilder(cols []ColumnSpec, capacity int) (*Builder, error) {
	schema, err := NewSchema(cols)
	if err != nil {
		return nil, err
	}
	mem := memory.NewGoAllocator()
	rb := array.NewRecordBuilder(mem, schema)
	rb.Reserve(capacity)
	return &Builder{schema: schema, cols: cols, rb: rb, mem: mem, capacity: capacity}, nil
}

// NumRows reports how many rows have been appended to the in-progress
// chunk so far.
func (b *Builder) NumRows() int {
	if len(b.cols) == 0 {
		return 0
	}
	return b.rb.Field(0).Len()
}

// Capacity is the configured publish threshold for this builder.
func (b *Builder) Capacity() int {
	return b.capacity
}

// Append writes one value into the column at idx. A nil value appends a
// null. The concrete Go type of value must match the column's target
// kind, as produced by the wire codec and worker decode loop:
//
//	BOOL->bool I16->int16 I32->int32 I64->int64 U32->uint32 F32->float32
//	F64->float64 DECIMAL->pgwire.Decimal TEXT/JSONB->string BLOB->[]byte
//	DATE/TIMESTAMP/TIMESTAMP_TZ->time.Time TIME/TIME_TZ->int64
//	INTERVAL->pgwire.Interval UUID->[16]byte ENUM->int32 (ordinal)
//	LIST->[]interface{} (element values, nil entries for null elements)
func (b *Builder) Append(idx int, value interface{}) error {
	if idx < 0 || idx >= len(b.cols) {
		return fmt.Errorf("column index %d out of range", idx)
	}
	return appendInto(b.rb.Field(idx), b.cols[idx].Type, value)
}

func appendInto(bld array.Builder, target typemap.TargetType, value interface{}) error {
	if value == nil {
		bld.AppendNull()
		return nil
	}
	switch target.Kind {
	case typemap.BOOL:
		bld.(*array.BooleanBuilder).Append(value.(bool))
	case typemap.I16:
		bld.(*array.Int16Builder).Append(value.(int16))
	case typemap.I32:
		bld.(*array.Int32Builder).Append(value.(int32))
	case typemap.I64:
		bld.(*array.Int64Builder).Append(value.(int64))
	case typemap.U32:
		bld.(*array.Uint32Builder).Append(value.(uint32))
	case typemap.F32:
		bld.(*array.Float32Builder).Append(value.(float32))
	case typemap.F64:
		bld.(*array.Float64Builder).Append(value.(float64))
	case typemap.DECIMAL:
		d := value.(pgwire.Decimal)
		bld.(*array.Decimal128Builder).Append(decimal128.FromI64(d.Scaled))
	case typemap.TEXT, typemap.JSONB:
		bld.(*array.StringBuilder).Append(value.(string))
	case typemap.BLOB:
		bld.(*array.BinaryBuilder).Append(value.([]byte))
	case typemap.DATE:
		t := value.(time.Time)
		days := int32(t.Sub(arrowEpoch).Hours() / 24)
		bld.(*array.Date32Builder).Append(arrow.Date32(days))
	case typemap.TIME:
		bld.(*array.Time64Builder).Append(arrow.Time64(value.(int64)))
	case typemap.TIME_TZ:
		bld.(*array.Int64Builder).Append(value.(int64))
	case typemap.TIMESTAMP, typemap.TIMESTAMP_TZ:
		t := value.(time.Time)
		micros := t.Sub(arrowEpoch).Microseconds()
		bld.(*array.TimestampBuilder).Append(arrow.Timestamp(micros))
	case typemap.INTERVAL:
		iv := value.(pgwire.Interval)
		bld.(*array.MonthDayNanoIntervalBuilder).Append(arrow.MonthDayNanoInterval{
			Months: iv.Months,
			Days:   iv.Days,
			Nanoseconds: iv.Micros * 1000,
		})
	case typemap.UUID:
		u := value.([16]byte)
		bld.(*array.FixedSizeBinaryBuilder).Append(u[:])
	case typemap.ENUM:
		bld.(*array.Int32Builder).Append(value.(int32))
	case typemap.LIST:
		elems, ok := value.([]interface{})
		if !ok {
			return fmt.Errorf("LIST column expects []interface{}, got %T", value)
		}
		lb := bld.(*array.ListBuilder)
		lb.Append(true)
		vb := lb.ValueBuilder()
		for _, elem := range elems {
			if target.ElementType == nil {
				return fmt.Errorf("LIST column missing element type")
			}
			if err := appendInto(vb, *target.ElementType, elem); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unmapped target kind %q", target.Kind)
	}
	return nil
}

// arrowEpoch is the Unix epoch, the zero point for Arrow's Date32 and
// Timestamp types; wire values are decoded relative to the server's own
// 2000-01-01 epoch and converted to time.Time before reaching Append.
var arrowEpoch = time.Unix(0, 0).UTC()

// Build finalizes the in-progress chunk into an immutable Arrow record
// and resets the builder for the next chunk.
func (b *Builder) Build() array.Record {
	return b.rb.NewRecord()
}

// Release frees the builder's underlying Arrow buffers. Call once the
// builder (and every record it produced) is no longer needed.
func (b *Builder) Release() {
	b.rb.Release()
}
