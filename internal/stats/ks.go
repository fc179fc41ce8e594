package stats

import (
	"math"
	"sort"
)

// KSTwoSample runs the two-sample Kolmogorov-Smirnov test and returns the
// D statistic and the asymptotic p-value. Returns NaN for empty inputs.
func KSTwoSample(a, b []float64) (d, p float64) {
	if len(a) == 0 || len(b) == 0 {
		return math.NaN(), math.NaN()
	}
	sa := make([]float64, len(a))
	copy(sa, a)
	sort.Float64s(sa)
	sb := make([]float64, len(b))
	copy(sb, b)
	sort.Float64s(sb)

	// Sweep both empirical CDFs and track the largest gap.
	na, nb := float64(len(sa)), float64(len(sb))
	var i, j int
	for i < len(sa) && j < len(sb) {
		va, vb := sa[i], sb[j]
		m := math.Min(va, vb)
		for i < len(sa) && sa[i] == m {
			i++
		}
		for j < len(sb) && sb[j] == m {
			j++
		}
		gap := math.Abs(float64(i)/na - float64(j)/nb)
		if gap > d {
			d = gap
		}
	}

	en := math.Sqrt(na * nb / (na + nb))
	p = kolmogorovSF(en * d)
	return d, p
}

// kolmogorovSF is the survival function of the Kolmogorov distribution,
// evaluated by the alternating series 2*sum (-1)^(k-1) exp(-2 k^2 x^2).
func kolmogorovSF(x float64) float64 {
	if x < 1e-8 {
		return 1
	}
	sum := 0.0
	for k := 1; k <= 100; k++ {
		term := 2 * math.Exp(-2*float64(k*k)*x*x)
		if k%2 == 0 {
			term = -term
		}
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
	}
	if sum < 0 {
		return 0
	}
	if sum > 1 {
		return 1
	}
	return sum
}
