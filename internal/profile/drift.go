package profile

import (
	"math"

	"github.com/srslogics/datasentinel/internal/dataset"
	"github.com/srslogics/datasentinel/internal/stats"
)

const (
	// PSIBuckets is the histogram width used by the stability index.
	PSIBuckets = 10
	// psiFloor keeps the log ratio finite when a bucket is empty.
	psiFloor = 1e-8

	// DefaultPSIThreshold flags drift when the index exceeds it.
	DefaultPSIThreshold = 0.2
	// DefaultKSAlpha flags drift when the KS p-value falls below it.
	DefaultKSAlpha = 0.05
)

// DriftResult is the per-column drift verdict.
type DriftResult struct {
	PSIScore   float64 `json:"psi_score"`
	DriftByPSI bool    `json:"drift_by_psi"`
	KSPValue   float64 `json:"ks_p_value"`
	DriftByKS  bool    `json:"drift_by_ks"`
}

// DriftEntry pairs a column name with its result.
type DriftEntry struct {
	Column string
	Result DriftResult
}

// DriftReport lists shared numeric columns in baseline order; it marshals as
// {column: result} preserving that order.
type DriftReport struct {
	Entries []DriftEntry
}

func (r *DriftReport) MarshalJSON() ([]byte, error) {
	obj := newOrderedObject()
	for _, e := range r.Entries {
		if err := obj.add(e.Column, e.Result); err != nil {
			return nil, err
		}
	}
	return obj.MarshalJSON()
}

// DetectDrift compares the numeric columns shared by both datasets: a
// 10-bucket PSI and a two-sample KS test per column, scores rounded to four
// decimal places. Non-numeric shared columns are skipped.
func DetectDrift(baseline, current *dataset.Dataset, psiThreshold, ksAlpha float64) *DriftReport {
	report := &DriftReport{}
	for _, bc := range baseline.Columns() {
		cc, shared := current.Column(bc.Name)
		if !shared || bc.Kind != dataset.Numeric || cc.Kind != dataset.Numeric {
			continue
		}
		expected := bc.PresentFloats()
		actual := cc.PresentFloats()
		if len(expected) == 0 || len(actual) == 0 {
			continue
		}
		psi := round4(PSI(expected, actual))
		_, ksP := stats.KSTwoSample(expected, actual)
		ksP = round4(ksP)
		report.Entries = append(report.Entries, DriftEntry{
			Column: bc.Name,
			Result: DriftResult{
				PSIScore:   psi,
				DriftByPSI: psi > psiThreshold,
				KSPValue:   ksP,
				DriftByKS:  ksP < ksAlpha,
			},
		})
	}
	return report
}

// PSI computes the Population Stability Index between two samples. Each
// sample is bucketed into 10 equal-width bins spanning its own observed
// range; a 1e-8 floor on both fractions keeps the log ratio defined for
// empty bins.
func PSI(expected, actual []float64) float64 {
	e := histogramFractions(expected, PSIBuckets)
	a := histogramFractions(actual, PSIBuckets)
	psi := 0.0
	for i := 0; i < PSIBuckets; i++ {
		psi += (e[i] - a[i]) * math.Log((e[i]+psiFloor)/(a[i]+psiFloor))
	}
	return psi
}

// histogramFractions bins values into equal-width buckets over [min, max]
// and returns per-bucket fractions. A constant sample spans a unit-width
// window around the value, matching numpy's histogram behavior.
func histogramFractions(vals []float64, buckets int) []float64 {
	out := make([]float64, buckets)
	if len(vals) == 0 {
		return out
	}
	lo, hi := stats.MinMax(vals)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(buckets)
	for _, v := range vals {
		idx := int((v - lo) / width)
		if idx >= buckets {
			idx = buckets - 1 // rightmost bin is closed
		}
		out[idx]++
	}
	for i := range out {
		out[i] /= float64(len(vals))
	}
	return out
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
