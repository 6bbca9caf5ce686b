package boxcar

import (
	"math"
	"sort"
)

// median returns the sample median, averaging the middle pair for
// even-length samples. NaN for an empty sample.
//
// The weighted median of the neighborhood is realized upstream by
// replicating each present value by its integer weight, so a plain sample
// median suffices here. gonum's stat.Quantile uses empirical-CDF
// interpolation that does not average the middle pair, which would drift
// from the established estimator on even-length samples.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return 0.5 * (s[n/2-1] + s[n/2])
}

// medianAbsDev returns the median absolute deviation of xs about med, the
// dispersion estimate reported alongside the velocity median.
func medianAbsDev(xs []float64, med float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	dev := make([]float64, len(xs))
	for i, x := range xs {
		dev[i] = math.Abs(x - med)
	}
	return median(dev)
}

// boxSample is the weight-replicated neighborhood sample for one target
// range cell: per-quantity value lists plus the completeness weights.
type boxSample struct {
	v, wl, pl []float64 // replicated physical quantities
	gfx       []float64 // replicated raw scatter flags (0/1)

	totalWeight   float64 // weight over all structurally possible cells
	presentWeight float64 // weight over cells with a measurement
}

// collect builds the replicated sample for a resolved box under kernel k.
// Each present gate's values are appended weight times; empty cells add to
// the total weight only; absent cells add to neither sum.
func collect(box *Box, k *Kernel) boxSample {
	var s boxSample
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for n := 0; n < 3; n++ {
				cell := &box[i][j][n]
				if cell.State == CellAbsent {
					continue
				}
				wt := k[i][j][n]
				s.totalWeight += float64(wt)
				if cell.State != CellPresent {
					continue
				}
				s.presentWeight += float64(wt)
				for m := 0; m < wt; m++ {
					s.v = append(s.v, cell.Gate.V)
					s.wl = append(s.wl, cell.Gate.WL)
					s.pl = append(s.pl, cell.Gate.PL)
					s.gfx = append(s.gfx, float64(cell.Gate.Gflg))
				}
			}
		}
	}
	return s
}

// completeness returns presentWeight/totalWeight, the fraction compared
// against the retention threshold. Zero total weight (possible only with a
// degenerate all-zero kernel) reads as zero completeness.
func (s *boxSample) completeness() float64 {
	if s.totalWeight == 0 {
		return 0
	}
	return s.presentWeight / s.totalWeight
}
