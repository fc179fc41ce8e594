package codec

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/srslogics/datasentinel/internal/dataset"
)

// encodeParquet writes a snappy-compressed parquet file, one row group.
func encodeParquet(ds *dataset.Dataset) ([]byte, error) {
	cols := ds.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		var dt arrow.DataType
		switch c.Kind {
		case dataset.Numeric:
			dt = arrow.PrimitiveTypes.Float64
		case dataset.Temporal:
			dt = arrow.FixedWidthTypes.Timestamp_ms
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	bld := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer bld.Release()
	for i, c := range cols {
		switch c.Kind {
		case dataset.Numeric:
			fb := bld.Field(i).(*array.Float64Builder)
			for _, v := range c.Floats {
				if math.IsNaN(v) {
					fb.AppendNull()
				} else {
					fb.Append(v)
				}
			}
		case dataset.Temporal:
			tb := bld.Field(i).(*array.TimestampBuilder)
			for _, v := range c.Times {
				if v.IsZero() {
					tb.AppendNull()
				} else {
					tb.Append(arrow.Timestamp(v.UnixMilli()))
				}
			}
		default:
			sb := bld.Field(i).(*array.StringBuilder)
			for _, v := range c.Strings {
				if v == "" {
					sb.AppendNull()
				} else {
					sb.Append(v)
				}
			}
		}
	}
	rec := bld.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	nrows := tbl.NumRows()
	if nrows == 0 {
		nrows = 1
	}
	if err := pqarrow.WriteTable(tbl, &buf, nrows, props, pqarrow.DefaultWriterProps()); err != nil {
		return nil, fmt.Errorf("write parquet: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeParquet(data []byte) (*dataset.Dataset, error) {
	tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(data),
		parquet.NewReaderProperties(memory.DefaultAllocator),
		pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer tbl.Release()

	nrows := int(tbl.NumRows())
	cols := make([]dataset.Column, 0, tbl.NumCols())
	for i := 0; i < int(tbl.NumCols()); i++ {
		field := tbl.Schema().Field(i)
		col, err := arrowColumn(field, tbl.Column(i).Data().Chunks(), nrows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return dataset.New(cols...)
}

// arrowColumn flattens a chunked arrow array into a Dataset column.
func arrowColumn(field arrow.Field, chunks []arrow.Array, nrows int) (dataset.Column, error) {
	switch field.Type.ID() {
	case arrow.FLOAT64, arrow.FLOAT32, arrow.INT64, arrow.INT32, arrow.BOOL:
		vals := make([]float64, 0, nrows)
		for _, chunk := range chunks {
			for r := 0; r < chunk.Len(); r++ {
				if chunk.IsNull(r) {
					vals = append(vals, math.NaN())
					continue
				}
				switch a := chunk.(type) {
				case *array.Float64:
					vals = append(vals, a.Value(r))
				case *array.Float32:
					vals = append(vals, float64(a.Value(r)))
				case *array.Int64:
					vals = append(vals, float64(a.Value(r)))
				case *array.Int32:
					vals = append(vals, float64(a.Value(r)))
				case *array.Boolean:
					if a.Value(r) {
						vals = append(vals, 1)
					} else {
						vals = append(vals, 0)
					}
				}
			}
		}
		return dataset.NewNumeric(field.Name, vals), nil
	case arrow.STRING, arrow.LARGE_STRING:
		vals := make([]string, 0, nrows)
		for _, chunk := range chunks {
			for r := 0; r < chunk.Len(); r++ {
				if chunk.IsNull(r) {
					vals = append(vals, "")
					continue
				}
				switch a := chunk.(type) {
				case *array.String:
					vals = append(vals, a.Value(r))
				case *array.LargeString:
					vals = append(vals, a.Value(r))
				}
			}
		}
		return dataset.NewText(field.Name, vals), nil
	case arrow.TIMESTAMP:
		unit := field.Type.(*arrow.TimestampType).Unit
		vals := make([]time.Time, 0, nrows)
		for _, chunk := range chunks {
			ts := chunk.(*array.Timestamp)
			for r := 0; r < ts.Len(); r++ {
				if ts.IsNull(r) {
					vals = append(vals, time.Time{})
				} else {
					vals = append(vals, ts.Value(r).ToTime(unit).UTC())
				}
			}
		}
		return dataset.NewTemporal(field.Name, vals), nil
	}
	return dataset.Column{}, fmt.Errorf("unsupported parquet column type %s for %q", field.Type, field.Name)
}
