package boxcar

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Scatter labels shared by all three classification methods.
const (
	ScatterIonospheric = 0
	ScatterGround      = 1
	ScatterAmbiguous   = 2
)

// legacyFlag applies the empirical threshold rule to the weighted-median
// velocity and spectral width: widths above the -3v + 90 line are
// ionospheric scatter, everything else ground scatter.
func legacyFlag(vMed, wlMed float64) int {
	if wlMed > -3*vMed+90 {
		return ScatterIonospheric
	}
	return ScatterGround
}

// bandClassify maps a fraction (or fitted probability) of ground scatter
// onto a label: at or below the lower bound is ionospheric, at or above the
// upper bound is ground, strictly between is ambiguous.
func bandClassify(frac float64, pbnd [2]float64) int {
	switch {
	case frac <= pbnd[0]:
		return ScatterIonospheric
	case frac >= pbnd[1]:
		return ScatterGround
	default:
		return ScatterAmbiguous
	}
}

// convFlag classifies by the weighted proportion of raw neighborhood
// scatter flags: the replicated flag sum over the total neighborhood
// weight, thresholded by pbnd.
func convFlag(s *boxSample, pbnd [2]float64) int {
	if s.totalWeight == 0 {
		return ScatterAmbiguous
	}
	var sum float64
	for _, g := range s.gfx {
		sum += g
	}
	return bandClassify(sum/s.totalWeight, pbnd)
}

// kdeFlag classifies probabilistically: the replicated flag sample is
// jittered off the exact 0/1 values, a Beta(a, b) distribution is fitted by
// maximum likelihood, and the fitted probability of a draw above pth is
// read as the probability of ground scatter and thresholded by pbnd. A fit
// failure yields the ambiguous label; it never propagates.
func kdeFlag(s *boxSample, pbnd [2]float64, pth float64, src rand.Source) int {
	sample := jitterFlags(s.gfx, src)
	a, b, err := fitBeta(sample)
	if err != nil {
		return ScatterAmbiguous
	}
	dist := distuv.Beta{Alpha: a, Beta: b}
	pGS := 1 - dist.CDF(pth)
	return bandClassify(pGS, pbnd)
}

// jitterFlags replaces exact 0 flags with uniform draws in [0.01, 0.05] and
// exact 1 flags with draws in [0.95, 0.99], making the sample fittable by a
// continuous Beta likelihood. The injected noise is controlled in
// distribution but deliberately not reproducible in value unless the caller
// pins the random source.
func jitterFlags(gfx []float64, src rand.Source) []float64 {
	low := distuv.Uniform{Min: 0.01, Max: 0.05, Src: src}
	high := distuv.Uniform{Min: 0.95, Max: 0.99, Src: src}
	out := make([]float64, len(gfx))
	for i, g := range gfx {
		switch g {
		case 0:
			out[i] = low.Rand()
		case 1:
			out[i] = high.Rand()
		default:
			out[i] = g
		}
	}
	return out
}
