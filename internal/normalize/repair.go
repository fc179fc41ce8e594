package normalize

import (
	"math"
	"time"

	"github.com/srslogics/datasentinel/internal/dataset"
	"github.com/srslogics/datasentinel/internal/stats"
)

// dateLayouts are the formats the temporal coercion step recognizes.
var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Repair standardizes a freshly loaded dataset: columns that are entirely
// missing are dropped, text columns where more than dateRate of the rows
// parse as dates become temporal, and numeric gaps are filled with the
// column median.
func Repair(ds *dataset.Dataset, dateRate float64) *dataset.Dataset {
	nrows := ds.NumRows()
	cols := make([]dataset.Column, 0, ds.NumCols())
	for _, c := range ds.Columns() {
		if nrows > 0 && c.MissingCount() == nrows {
			continue
		}
		switch c.Kind {
		case dataset.Text, dataset.Categorical:
			cols = append(cols, coerceTemporal(c, nrows, dateRate))
		case dataset.Numeric:
			cols = append(cols, fillMedian(c))
		default:
			cols = append(cols, c)
		}
	}
	out, _ := dataset.New(cols...)
	return out
}

// coerceTemporal converts a text column to temporal when enough of the
// dataset's rows hold parseable dates; otherwise the column passes through.
func coerceTemporal(c dataset.Column, nrows int, dateRate float64) dataset.Column {
	times := make([]time.Time, len(c.Strings))
	parsed := 0
	for i, v := range c.Strings {
		if v == "" {
			continue
		}
		if t, ok := parseTimeMaybe(v); ok {
			times[i] = t
			parsed++
		}
	}
	if nrows > 0 && float64(parsed) > dateRate*float64(nrows) {
		return dataset.NewTemporal(c.Name, times)
	}
	return c
}

// fillMedian replaces missing numeric entries with the median of the present
// values. Median fill is robust against the outliers handled downstream.
func fillMedian(c dataset.Column) dataset.Column {
	if c.MissingCount() == 0 {
		return c
	}
	med := stats.Median(c.PresentFloats())
	out := c.CloneValues()
	for i, v := range out.Floats {
		if math.IsNaN(v) {
			out.Floats[i] = med
		}
	}
	return out
}
