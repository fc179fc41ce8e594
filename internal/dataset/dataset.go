package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the logical type tag of a column.
type Kind int

const (
	Numeric Kind = iota
	Text
	Temporal
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	case Temporal:
		return "temporal"
	case Categorical:
		return "categorical"
	}
	return "unknown"
}

// DType reports the pandas-style dtype name used in profile reports.
func (k Kind) DType() string {
	switch k {
	case Numeric:
		return "float64"
	case Temporal:
		return "datetime64[ns]"
	default:
		return "object"
	}
}

// Column is a named, homogeneously typed value sequence. Exactly one of the
// value slices is populated, selected by Kind. Missing values are sentinels:
// NaN for numeric, "" for text/categorical, the zero time for temporal.
type Column struct {
	Name string
	Kind Kind

	Floats  []float64
	Strings []string
	Times   []time.Time
}

// NewNumeric builds a numeric column; NaN marks missing entries.
func NewNumeric(name string, vals []float64) Column {
	return Column{Name: name, Kind: Numeric, Floats: vals}
}

// NewText builds a text column; "" marks missing entries.
func NewText(name string, vals []string) Column {
	return Column{Name: name, Kind: Text, Strings: vals}
}

// NewCategorical builds a categorical column; "" marks missing entries.
func NewCategorical(name string, vals []string) Column {
	return Column{Name: name, Kind: Categorical, Strings: vals}
}

// NewTemporal builds a temporal column; the zero time marks missing entries.
func NewTemporal(name string, vals []time.Time) Column {
	return Column{Name: name, Kind: Temporal, Times: vals}
}

// Len returns the number of rows in the column.
func (c Column) Len() int {
	switch c.Kind {
	case Numeric:
		return len(c.Floats)
	case Temporal:
		return len(c.Times)
	default:
		return len(c.Strings)
	}
}

// Missing reports whether row i holds the missing sentinel.
func (c Column) Missing(i int) bool {
	switch c.Kind {
	case Numeric:
		return math.IsNaN(c.Floats[i])
	case Temporal:
		return c.Times[i].IsZero()
	default:
		return c.Strings[i] == ""
	}
}

// MissingCount returns the number of missing entries.
func (c Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.Missing(i) {
			n++
		}
	}
	return n
}

// PresentFloats returns the non-missing values of a numeric column.
func (c Column) PresentFloats() []float64 {
	out := make([]float64, 0, len(c.Floats))
	for _, v := range c.Floats {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// PresentStrings returns the non-missing values of a text/categorical column.
func (c Column) PresentStrings() []string {
	out := make([]string, 0, len(c.Strings))
	for _, v := range c.Strings {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DistinctCount returns the number of distinct non-missing values.
func (c Column) DistinctCount() int {
	switch c.Kind {
	case Numeric:
		seen := make(map[float64]struct{})
		for _, v := range c.Floats {
			if !math.IsNaN(v) {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	case Temporal:
		seen := make(map[time.Time]struct{})
		for _, v := range c.Times {
			if !v.IsZero() {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	default:
		seen := make(map[string]struct{})
		for _, v := range c.Strings {
			if v != "" {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	}
}

// CloneValues returns a copy of the column with its own value buffer.
// Stages that rewrite cells clone first so the caller's Dataset is untouched.
func (c Column) CloneValues() Column {
	out := c
	switch c.Kind {
	case Numeric:
		out.Floats = append([]float64(nil), c.Floats...)
	case Temporal:
		out.Times = append([]time.Time(nil), c.Times...)
	default:
		out.Strings = append([]string(nil), c.Strings...)
	}
	return out
}

// CellString renders row i as a string, with "" for missing values.
// Used by the CSV/JSON encoders and duplicate-row detection.
func (c Column) CellString(i int) string {
	if c.Missing(i) {
		return ""
	}
	switch c.Kind {
	case Numeric:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	case Temporal:
		return c.Times[i].Format(time.RFC3339)
	default:
		return c.Strings[i]
	}
}

// Dataset is an ordered collection of uniquely named, equal-length columns.
// Transform methods return a new Dataset that shares the buffers of columns
// the transform did not touch.
type Dataset struct {
	cols  []Column
	index map[string]int
}

// New validates column names and lengths and builds a Dataset.
func New(cols ...Column) (*Dataset, error) {
	d := &Dataset{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i > 0 && c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), cols[0].Len())
		}
		d.index[c.Name] = i
	}
	return d, nil
}

// NumRows returns the uniform row count.
func (d *Dataset) NumRows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return d.cols[0].Len()
}

// NumCols returns the column count.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Columns returns the columns in order. The slice is a copy; the value
// buffers are shared.
func (d *Dataset) Columns() []Column {
	return append([]Column(nil), d.cols...)
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by name.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.cols[i], true
}

// WithColumn returns a new Dataset where col replaces the column of the same
// name, or is appended if no such column exists.
func (d *Dataset) WithColumn(col Column) *Dataset {
	cols := append([]Column(nil), d.cols...)
	if i, ok := d.index[col.Name]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	out, _ := New(cols...)
	return out
}

// Drop returns a new Dataset without the named columns.
func (d *Dataset) Drop(names ...string) *Dataset {
	dropped := make(map[string]struct{}, len(names))
	for _, n := range names {
		dropped[n] = struct{}{}
	}
	cols := make([]Column, 0, len(d.cols))
	for _, c := range d.cols {
		if _, skip := dropped[c.Name]; !skip {
			cols = append(cols, c)
		}
	}
	out, _ := New(cols...)
	return out
}

// RowKey renders the full value tuple of row i, for duplicate detection.
func (d *Dataset) RowKey(i int) string {
	var b strings.Builder
	for j, c := range d.cols {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(c.CellString(i))
	}
	return b.String()
}
