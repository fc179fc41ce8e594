package normalize

import (
	"math"

	"github.com/srslogics/datasentinel/internal/dataset"
	"github.com/srslogics/datasentinel/internal/stats"
)

// ScaleNumeric min-max scales every numeric column to [0, 1] using the
// column's own range. A constant column scales to all zeros rather than
// dividing by zero. Missing entries stay missing.
func ScaleNumeric(ds *dataset.Dataset) *dataset.Dataset {
	out := ds
	for _, c := range ds.Columns() {
		if c.Kind != dataset.Numeric {
			continue
		}
		vals := c.PresentFloats()
		if len(vals) == 0 {
			continue
		}
		lo, hi := stats.MinMax(vals)
		if lo == 0 && hi == 1 {
			continue // already scaled, e.g. one-hot indicators
		}
		scaled := c.CloneValues()
		span := hi - lo
		for i, v := range scaled.Floats {
			if math.IsNaN(v) {
				continue
			}
			if span == 0 {
				scaled.Floats[i] = 0
			} else {
				scaled.Floats[i] = (v - lo) / span
			}
		}
		out = out.WithColumn(scaled)
	}
	return out
}
