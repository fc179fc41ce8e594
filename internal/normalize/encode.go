package normalize

import (
	"fmt"
	"math"
	"sort"

	"github.com/srslogics/datasentinel/internal/dataset"
)

// EncodeCategoricals turns text/categorical columns into numeric ones.
// Low-cardinality columns (at most oneHotMax distinct values) are one-hot
// encoded into `<name>_<index>` indicator columns appended after the
// remaining columns; the rest are label encoded in place.
//
// Category-to-index order is the sorted distinct values, so the positional
// suffixes are reproducible across runs. Missing entries one-hot to an
// all-zero row and label-encode to missing. A generated indicator name that
// collides with an existing column (input already holds a `<name>_<i>`
// column) is an error.
func EncodeCategoricals(ds *dataset.Dataset, oneHotMax int) (*dataset.Dataset, error) {
	base := make([]dataset.Column, 0, ds.NumCols())
	var hot []dataset.Column
	for _, c := range ds.Columns() {
		if c.Kind != dataset.Text && c.Kind != dataset.Categorical {
			base = append(base, c)
			continue
		}
		categories := sortedDistinct(c.Strings)
		if len(categories) == 0 {
			base = append(base, c)
			continue
		}
		if len(categories) <= oneHotMax {
			hot = append(hot, oneHotColumns(c, categories)...)
			continue
		}
		base = append(base, labelEncode(c, categories))
	}
	out, err := dataset.New(append(base, hot...)...)
	if err != nil {
		return nil, fmt.Errorf("encode categoricals: %w", err)
	}
	return out, nil
}

func sortedDistinct(vals []string) []string {
	seen := make(map[string]struct{})
	for _, v := range vals {
		if v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func oneHotColumns(c dataset.Column, categories []string) []dataset.Column {
	cols := make([]dataset.Column, len(categories))
	for k, cat := range categories {
		vals := make([]float64, len(c.Strings))
		for i, v := range c.Strings {
			if v == cat {
				vals[i] = 1
			}
		}
		cols[k] = dataset.NewNumeric(fmt.Sprintf("%s_%d", c.Name, k), vals)
	}
	return cols
}

func labelEncode(c dataset.Column, categories []string) dataset.Column {
	codes := make(map[string]float64, len(categories))
	for k, cat := range categories {
		codes[cat] = float64(k)
	}
	vals := make([]float64, len(c.Strings))
	for i, v := range c.Strings {
		if v == "" {
			vals[i] = math.NaN()
		} else {
			vals[i] = codes[v]
		}
	}
	return dataset.NewNumeric(c.Name, vals)
}
