package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalTestMinSamples is the smallest sample the omnibus test accepts; the
// skewness transform below is undefined for fewer values.
const NormalTestMinSamples = 8

// NormalTestPValue runs D'Agostino and Pearson's omnibus normality test and
// returns its p-value: the skewness and kurtosis z-scores are squared, summed
// and referred to a chi-squared distribution with two degrees of freedom.
// Returns (NaN, false) when the sample is too small for the transforms.
func NormalTestPValue(x []float64) (float64, bool) {
	n := len(x)
	if n < NormalTestMinSamples {
		return math.NaN(), false
	}
	zs := skewZ(x)
	zk := kurtosisZ(x)
	k2 := zs*zs + zk*zk
	chi2 := distuv.ChiSquared{K: 2}
	return chi2.Survival(k2), true
}

// skewZ transforms the biased sample skewness g1 to an approximately
// standard normal deviate (D'Agostino 1970).
func skewZ(x []float64) float64 {
	n := float64(len(x))
	_, m2, m3, _ := centralMoments(x)
	g1 := 0.0
	if m2 > 0 {
		g1 = m3 / math.Pow(m2, 1.5)
	}
	y := g1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) /
		((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	if y == 0 {
		y = 1
	}
	return delta * math.Log(y/alpha+math.Sqrt((y/alpha)*(y/alpha)+1))
}

// kurtosisZ transforms the biased sample kurtosis b2 to an approximately
// standard normal deviate (Anscombe & Glynn 1983).
func kurtosisZ(x []float64) float64 {
	n := float64(len(x))
	_, m2, _, m4 := centralMoments(x)
	b2 := 0.0
	if m2 > 0 {
		b2 = m4 / (m2 * m2)
	}
	e := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	xstat := (b2 - e) / math.Sqrt(varb2)
	sqrtbeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) *
		math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtbeta1*(2/sqrtbeta1+math.Sqrt(1+4/(sqrtbeta1*sqrtbeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + xstat*math.Sqrt(2/(a-4))
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}
