// Package profile computes per-column descriptive statistics and the
// baseline-versus-current drift comparison, and serializes both as the JSON
// report shapes the platform persists.
package profile

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/srslogics/datasentinel/internal/dataset"
	"github.com/srslogics/datasentinel/internal/stats"
)

// NumericSummary holds the numeric profile fields. Pointers are nil when the
// column has no present values; they serialize as JSON null.
type NumericSummary struct {
	Min  *float64
	Max  *float64
	Mean *float64
	Std  *float64
}

// ValueCount is one entry of a text column's top-value frequencies.
type ValueCount struct {
	Value string
	Count int
}

// TextSummary holds the text profile fields. Lengths are zero when the
// column has no present values.
type TextSummary struct {
	MinLength int
	MaxLength int
	AvgLength float64
	TopValues []ValueCount
}

// ColumnProfile summarizes a single column.
type ColumnProfile struct {
	Name           string
	DType          string
	NullCount      int
	NullPercentage float64
	UniqueCount    int
	Numeric        *NumericSummary
	Text           *TextSummary
}

// Report is the dataset-level profile, serialized as
// {total_rows, total_columns, duplicate_rows, memory_usage_mb, columns:{...}}.
type Report struct {
	TotalRows     int
	TotalColumns  int
	DuplicateRows int
	MemoryUsageMB float64
	Columns       []ColumnProfile
}

// ProfileColumn summarizes one column. Numeric statistics are computed over
// present values only; a column with zero present values reports null
// min/max/mean/std rather than failing.
func ProfileColumn(c dataset.Column) ColumnProfile {
	n := c.Len()
	nulls := c.MissingCount()
	p := ColumnProfile{
		Name:        c.Name,
		DType:       c.Kind.DType(),
		NullCount:   nulls,
		UniqueCount: c.DistinctCount(),
	}
	if n > 0 {
		p.NullPercentage = float64(nulls) / float64(n) * 100
	}
	switch c.Kind {
	case dataset.Numeric:
		p.Numeric = numericSummary(c.PresentFloats())
	case dataset.Text, dataset.Categorical:
		p.Text = textSummary(c.PresentStrings())
	}
	return p
}

func numericSummary(vals []float64) *NumericSummary {
	s := &NumericSummary{}
	if len(vals) == 0 {
		return s
	}
	lo, hi := stats.MinMax(vals)
	mean := stats.Mean(vals)
	s.Min, s.Max, s.Mean = &lo, &hi, &mean
	if std := stats.Std(vals); !math.IsNaN(std) {
		s.Std = &std
	}
	return s
}

func textSummary(vals []string) *TextSummary {
	s := &TextSummary{}
	if len(vals) > 0 {
		s.MinLength = len(vals[0])
		total := 0
		for _, v := range vals {
			l := len(v)
			if l < s.MinLength {
				s.MinLength = l
			}
			if l > s.MaxLength {
				s.MaxLength = l
			}
			total += l
		}
		s.AvgLength = float64(total) / float64(len(vals))
	}
	counts := make(map[string]int)
	for _, v := range vals {
		counts[v]++
	}
	tops := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		tops = append(tops, ValueCount{Value: v, Count: n})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > 5 {
		tops = tops[:5]
	}
	s.TopValues = tops
	return s
}

// ProfileDataset profiles every column plus the dataset-level aggregates.
func ProfileDataset(ds *dataset.Dataset) *Report {
	r := &Report{
		TotalRows:     ds.NumRows(),
		TotalColumns:  ds.NumCols(),
		MemoryUsageMB: approxMemoryMB(ds),
	}
	seen := make(map[string]struct{}, ds.NumRows())
	for i := 0; i < ds.NumRows(); i++ {
		key := ds.RowKey(i)
		if _, dup := seen[key]; dup {
			r.DuplicateRows++
		} else {
			seen[key] = struct{}{}
		}
	}
	for _, c := range ds.Columns() {
		r.Columns = append(r.Columns, ProfileColumn(c))
	}
	return r
}

// approxMemoryMB estimates the in-memory footprint: 8 bytes per numeric or
// temporal cell, string header plus payload per text cell.
func approxMemoryMB(ds *dataset.Dataset) float64 {
	total := 0
	for _, c := range ds.Columns() {
		switch c.Kind {
		case dataset.Numeric, dataset.Temporal:
			total += 8 * c.Len()
		default:
			for _, v := range c.Strings {
				total += 16 + len(v)
			}
		}
	}
	return float64(total) / (1024 * 1024)
}

// MarshalJSON emits the persisted report shape with columns in dataset order.
func (r *Report) MarshalJSON() ([]byte, error) {
	cols := newOrderedObject()
	for _, c := range r.Columns {
		if err := cols.add(c.Name, c); err != nil {
			return nil, err
		}
	}
	top := newOrderedObject()
	for _, kv := range []struct {
		k string
		v any
	}{
		{"total_rows", r.TotalRows},
		{"total_columns", r.TotalColumns},
		{"duplicate_rows", r.DuplicateRows},
		{"memory_usage_mb", r.MemoryUsageMB},
		{"columns", cols},
	} {
		if err := top.add(kv.k, kv.v); err != nil {
			return nil, err
		}
	}
	return top.MarshalJSON()
}

// MarshalJSON emits the base fields plus the type-conditional block.
func (p ColumnProfile) MarshalJSON() ([]byte, error) {
	obj := newOrderedObject()
	_ = obj.add("dtype", p.DType)
	_ = obj.add("null_count", p.NullCount)
	_ = obj.add("null_percentage", p.NullPercentage)
	_ = obj.add("unique_count", p.UniqueCount)
	if s := p.Numeric; s != nil {
		_ = obj.add("min", s.Min)
		_ = obj.add("max", s.Max)
		_ = obj.add("mean", s.Mean)
		_ = obj.add("std", s.Std)
	}
	if s := p.Text; s != nil {
		_ = obj.add("min_length", s.MinLength)
		_ = obj.add("max_length", s.MaxLength)
		_ = obj.add("avg_length", s.AvgLength)
		tops := newOrderedObject()
		for _, vc := range s.TopValues {
			_ = tops.add(vc.Value, vc.Count)
		}
		_ = obj.add("top_values", tops)
	}
	return obj.MarshalJSON()
}

// orderedObject marshals as a JSON object preserving insertion order, which
// keeps report key ordering reproducible for tests and diffing.
type orderedObject struct {
	keys []string
	vals []json.RawMessage
}

func newOrderedObject() *orderedObject { return &orderedObject{} }

func (o *orderedObject) add(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, raw)
	return nil
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(o.vals[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
