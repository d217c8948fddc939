package main

import (
	"encoding/base64"
	"fmt"

	"github.com/apache/arrow/go/arrow"
	"github.com/apache/arrow/go/arrow/array"
)

// rowsFromRecord flattens one Arrow record into a slice of JSON-ready
// row maps, the shape parquet-go's JSON writer expects, the same way the
// teacher's insert path always lands on a map[string]any per row before
// handing it to writer.NewJSONWriterFromWriter.
func rowsFromRecord(rec array.Record) ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, rec.NumRows())
	for r := range rows {
		rows[r] = make(map[string]interface{}, rec.NumCols())
	}

	schema := rec.Schema()
	for c := 0; c < int(rec.NumCols()); c++ {
		name := schema.Field(c).Name
		col := rec.Column(c)
		for r := 0; r < int(rec.NumRows()); r++ {
			v, err := cellValue(col, r)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", name, r, err)
			}
			rows[r][name] = v
		}
	}
	return rows, nil
}

func cellValue(col arrow.Array, row int) (interface{}, error) {
	if col.IsNull(row) {
		return nil, nil
	}
	switch a := col.(type) {
	case *array.Boolean:
		return a.Value(row), nil
	case *array.Int16:
		return a.Value(row), nil
	case *array.Int32:
		return a.Value(row), nil
	case *array.Int64:
		return a.Value(row), nil
	case *array.Uint32:
		return a.Value(row), nil
	case *array.Float32:
		return a.Value(row), nil
	case *array.Float64:
		return a.Value(row), nil
	case *array.Decimal128:
		return a.Value(row).ToFloat64(a.DataType().(*arrow.Decimal128Type).Scale), nil
	case *array.String:
		return a.Value(row), nil
	case *array.Binary:
		return base64.StdEncoding.EncodeToString(a.Value(row)), nil
	case *array.Date32:
		// Days since the Unix epoch, the INT32 DATE representation the
		// parquet schema declares for this column.
		return int32(a.Value(row)), nil
	case *array.Time64:
		return int64(a.Value(row)), nil
	case *array.Timestamp:
		return int64(a.Value(row)), nil
	case *array.FixedSizeBinary:
		return fmt.Sprintf("%x", a.Value(row)), nil
	case *array.MonthDayNanoInterval:
		iv := a.Value(row)
		return fmt.Sprintf("%dmon %dd %dns", iv.Months, iv.Days, iv.Nanoseconds), nil
	case *array.List:
		return listCellValues(a, row)
	default:
		return nil, fmt.Errorf("unhandled arrow array type %T", col)
	}
}

func listCellValues(l *array.List, row int) ([]interface{}, error) {
	offsets := l.Offsets()
	start, end := offsets[row], offsets[row+1]
	values := l.ListValues()
	out := make([]interface{}, 0, end-start)
	for i := start; i < end; i++ {
		v, err := cellValue(values, int(i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
