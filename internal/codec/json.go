package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cast"

	"github.com/srslogics/datasentinel/internal/dataset"
)

// decodeJSON reads an array of record objects. Column order is the sorted
// union of keys, so repeated decodes are reproducible.
func decodeJSON(data []byte) (*dataset.Dataset, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse json records: %w", err)
	}
	keys := map[string]struct{}{}
	for _, rec := range records {
		for k := range rec {
			keys[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(names))
		for j, name := range names {
			v, ok := rec[name]
			if !ok || v == nil {
				continue
			}
			row[j] = cast.ToString(v)
		}
		rows[i] = row
	}
	return fromRecords(names, rows)
}

// encodeJSON writes an array of record objects with nulls for missing cells.
func encodeJSON(ds *dataset.Dataset) ([]byte, error) {
	cols := ds.Columns()
	records := make([]map[string]any, ds.NumRows())
	for i := range records {
		rec := make(map[string]any, len(cols))
		for _, c := range cols {
			switch {
			case c.Missing(i):
				rec[c.Name] = nil
			case c.Kind == dataset.Numeric:
				if math.IsNaN(c.Floats[i]) {
					rec[c.Name] = nil
				} else {
					rec[c.Name] = c.Floats[i]
				}
			default:
				rec[c.Name] = c.CellString(i)
			}
		}
		records[i] = rec
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal json records: %w", err)
	}
	return b, nil
}
