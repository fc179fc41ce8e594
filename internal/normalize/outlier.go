package normalize

import (
	"math"
	"math/rand"

	"github.com/srslogics/datasentinel/internal/dataset"
	"github.com/srslogics/datasentinel/internal/stats"
)

// Method is the dataset-wide outlier detection method. It is selected once
// by Detect and threaded explicitly into Resolve.
type Method string

const (
	MethodZScore Method = "zscore"
	MethodIQR    Method = "iqr"
)

// Options tunes the outlier stages.
type Options struct {
	// Threshold is shared by both methods: the z-score cutoff and the IQR
	// multiplier. The same 1.5 default serves both; they may deserve
	// separate tuning.
	Threshold float64
	// SampleFrac and Seed control the subsample used for method selection.
	SampleFrac float64
	Seed       int64
	// ResolveCutoff is the flagged fraction above which Resolve winsorizes
	// instead of dropping.
	ResolveCutoff float64
	// WinsorLimit is the tail fraction clamped on each side when winsorizing.
	WinsorLimit float64
}

// DefaultOptions mirrors the platform defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:     1.5,
		SampleFrac:    0.1,
		Seed:          42,
		ResolveCutoff: 0.05,
		WinsorLimit:   0.05,
	}
}

// Mask marks, per numeric column, which rows were flagged as outliers and
// the fraction of rows flagged.
type Mask struct {
	Flags    map[string][]bool
	Fraction map[string]float64
}

// Detect selects a detection method for the whole dataset and flags outliers
// in every numeric column.
//
// Method selection runs a normality test per numeric column over a seeded
// uniform subsample: when at least one p-value is obtainable and every
// obtained p-value exceeds 0.05, the data looks Gaussian enough for z-scores;
// anything else falls back to the distribution-free IQR rule.
func Detect(ds *dataset.Dataset, opt Options) (Method, *Mask) {
	method := selectMethod(ds, opt)
	mask := &Mask{
		Flags:    make(map[string][]bool),
		Fraction: make(map[string]float64),
	}
	nrows := ds.NumRows()
	for _, c := range ds.Columns() {
		if c.Kind != dataset.Numeric {
			continue
		}
		flags := make([]bool, nrows)
		flagged := 0
		vals := c.PresentFloats()
		switch method {
		case MethodZScore:
			mean := stats.Mean(vals)
			std := stats.Std(vals)
			for i, v := range c.Floats {
				if !math.IsNaN(v) && std > 0 && math.Abs((v-mean)/std) > opt.Threshold {
					flags[i] = true
					flagged++
				}
			}
		default:
			lower, upper := iqrBounds(vals, opt.Threshold)
			for i, v := range c.Floats {
				if !math.IsNaN(v) && (v < lower || v > upper) {
					flags[i] = true
					flagged++
				}
			}
		}
		mask.Flags[c.Name] = flags
		if nrows > 0 {
			mask.Fraction[c.Name] = float64(flagged) / float64(nrows)
		}
	}
	return method, mask
}

func selectMethod(ds *dataset.Dataset, opt Options) Method {
	idx := sampleRows(ds.NumRows(), opt.SampleFrac, opt.Seed)
	obtained := 0
	allNormal := true
	for _, c := range ds.Columns() {
		if c.Kind != dataset.Numeric {
			continue
		}
		vals := make([]float64, 0, len(idx))
		for _, i := range idx {
			if !math.IsNaN(c.Floats[i]) {
				vals = append(vals, c.Floats[i])
			}
		}
		if len(vals) <= stats.NormalTestMinSamples {
			continue
		}
		p, ok := stats.NormalTestPValue(vals)
		if !ok {
			continue
		}
		obtained++
		if p <= 0.05 {
			allNormal = false
		}
	}
	if obtained > 0 && allNormal {
		return MethodZScore
	}
	return MethodIQR
}

// sampleRows draws a reproducible uniform subsample of row indices.
func sampleRows(n int, frac float64, seed int64) []int {
	k := int(math.Round(frac * float64(n)))
	if k > n {
		k = n
	}
	rng := rand.New(rand.NewSource(seed))
	return rng.Perm(n)[:k]
}

func iqrBounds(vals []float64, threshold float64) (float64, float64) {
	q1 := stats.Quantile(vals, 0.25)
	q3 := stats.Quantile(vals, 0.75)
	iqr := q3 - q1
	return q1 - threshold*iqr, q3 + threshold*iqr
}

// Resolve repairs the flagged cells. Columns with a small flagged fraction
// have their out-of-bound values dropped to missing; heavily flagged columns
// are winsorized instead so most of the data volume survives. The method
// drives detection only: the drop branch clamps against the
// distribution-free IQR fences whichever method flagged the rows.
func Resolve(ds *dataset.Dataset, method Method, mask *Mask, opt Options) *dataset.Dataset {
	out := ds
	for _, c := range ds.Columns() {
		if c.Kind != dataset.Numeric {
			continue
		}
		frac, ok := mask.Fraction[c.Name]
		if !ok {
			continue
		}
		vals := c.PresentFloats()
		if len(vals) == 0 {
			continue
		}
		repaired := c.CloneValues()
		if frac <= opt.ResolveCutoff {
			lower, upper := iqrBounds(vals, opt.Threshold)
			for i, v := range repaired.Floats {
				if !math.IsNaN(v) && (v < lower || v > upper) {
					repaired.Floats[i] = math.NaN()
				}
			}
		} else {
			lo := stats.Quantile(vals, opt.WinsorLimit)
			hi := stats.Quantile(vals, 1-opt.WinsorLimit)
			for i, v := range repaired.Floats {
				if math.IsNaN(v) {
					continue
				}
				if v < lo {
					repaired.Floats[i] = lo
				} else if v > hi {
					repaired.Floats[i] = hi
				}
			}
		}
		out = out.WithColumn(repaired)
	}
	return out
}
