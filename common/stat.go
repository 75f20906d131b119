package common

import (
	"math"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"
)

// ECDF returns the empirical CDF of samples as plot points, one point per
// distinct value. samples is not modified.
func ECDF(samples []float64) plotter.XYs {
	n := len(samples)
	if n == 0 {
		return plotter.XYs{}
	}
	sorted := SortedCopy(samples)
	ecdfs := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if i+1 < n && sorted[i+1] == sorted[i] {
			continue
		}
		ecdfs = append(ecdfs, plotter.XY{X: sorted[i], Y: float64(i+1) / float64(n)})
	}
	return ecdfs
}

func SortedCopy(samples []float64) []float64 {
	sorted := slices.Clone(samples)
	stat.SortWeighted(sorted, nil)
	return sorted
}

// Percentile is the nearest-rank percentile of an ascending sample: the value
// at index round(p/100*(n-1)), clamped to the sample. Ties in the rank round
// half to even. ok is false for an empty sample.
func Percentile(sorted []float64, p float64) (v float64, ok bool) {
	n := len(sorted)
	if n == 0 {
		return 0, false
	}
	idx := int(math.RoundToEven(p / 100 * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx], true
}

// MeanStd returns mean and sample standard deviation, zeros for an empty sample.
func MeanStd(samples []float64) (float64, float64) {
	switch len(samples) {
	case 0:
		return 0, 0
	case 1:
		return samples[0], 0
	}
	return stat.MeanStdDev(samples, nil)
}
