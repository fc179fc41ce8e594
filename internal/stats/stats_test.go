package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndStd(t *testing.T) {
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.True(t, math.IsNaN(Mean(nil)))

	assert.InDelta(t, 1.2909944487, Std([]float64{1, 2, 3, 4}), 1e-9)
	assert.True(t, math.IsNaN(Std([]float64{5})))
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax([]float64{3, -1, 7, 2})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)

	lo, hi = MinMax(nil)
	assert.True(t, math.IsNaN(lo))
	assert.True(t, math.IsNaN(hi))
}

func TestQuantileLinearInterpolation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 100}
	assert.InDelta(t, 2.25, Quantile(x, 0.25), 1e-12)
	assert.InDelta(t, 3.5, Quantile(x, 0.5), 1e-12)
	assert.InDelta(t, 4.75, Quantile(x, 0.75), 1e-12)
	assert.Equal(t, 1.0, Quantile(x, 0))
	assert.Equal(t, 100.0, Quantile(x, 1))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	x := []float64{3, 1, 2}
	_ = Quantile(x, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, x)
}

func TestMedianOddAndEven(t *testing.T) {
	assert.InDelta(t, 2.0, Median([]float64{3, 1, 2}), 1e-12)
	assert.InDelta(t, 2.5, Median([]float64{4, 1, 2, 3}), 1e-12)
}

func TestNormalTestTooSmall(t *testing.T) {
	_, ok := NormalTestPValue([]float64{1, 2, 3, 4, 5, 6, 7})
	assert.False(t, ok)
}

func TestNormalTestAcceptsSymmetricSample(t *testing.T) {
	// An even grid is symmetric and light-tailed; the omnibus test should not
	// reject it at the 5% level.
	x := make([]float64, 20)
	for i := range x {
		x[i] = float64(i + 1)
	}
	p, ok := NormalTestPValue(x)
	require.True(t, ok)
	assert.Greater(t, p, 0.05)
	assert.LessOrEqual(t, p, 1.0)
}

func TestNormalTestRejectsSkewedSample(t *testing.T) {
	x := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 20}
	p, ok := NormalTestPValue(x)
	require.True(t, ok)
	assert.Less(t, p, 0.05)
}

func TestKSIdenticalSamples(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	d, p := KSTwoSample(x, x)
	assert.Equal(t, 0.0, d)
	assert.Equal(t, 1.0, p)
}

func TestKSDisjointSamples(t *testing.T) {
	a := make([]float64, 20)
	b := make([]float64, 20)
	for i := range a {
		a[i] = float64(i)
		b[i] = float64(i) + 100
	}
	d, p := KSTwoSample(a, b)
	assert.Equal(t, 1.0, d)
	assert.Less(t, p, 1e-6)
}

func TestKSEmptyInput(t *testing.T) {
	d, p := KSTwoSample(nil, []float64{1})
	assert.True(t, math.IsNaN(d))
	assert.True(t, math.IsNaN(p))
}

func TestKSShiftedSamplesOrderIndependent(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	b := []float64{3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	d1, p1 := KSTwoSample(a, b)
	d2, p2 := KSTwoSample(b, a)
	assert.Equal(t, d1, d2)
	assert.Equal(t, p1, p2)
	assert.InDelta(t, 0.2, d1, 1e-12)
}
