package boxcar

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// errDegenerateSample rejects samples the Beta likelihood cannot separate:
// too few points or no spread after noise injection.
var errDegenerateSample = errors.New("degenerate sample for beta fit")

// fitBeta fits a two-parameter Beta(a, b) distribution on (0, 1) by maximum
// likelihood, location fixed at 0 and scale fixed at 1. All sample values
// must already lie strictly inside (0, 1); the caller is responsible for
// jittering exact 0/1 flags first.
//
// The negative log-likelihood is minimized with Nelder-Mead over log-shape
// parameters so that a and b stay positive, starting from the
// method-of-moments estimate.
func fitBeta(xs []float64) (alpha, beta float64, err error) {
	if len(xs) < 2 {
		return 0, 0, errDegenerateSample
	}
	var sumLx, sumL1x, sum, sumSq float64
	minX, maxX := xs[0], xs[0]
	for _, x := range xs {
		if x <= 0 || x >= 1 {
			return 0, 0, fmt.Errorf("beta fit sample %v outside (0,1)", x)
		}
		sumLx += math.Log(x)
		sumL1x += math.Log(1 - x)
		sum += x
		sumSq += x * x
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	if maxX-minX < 1e-12 {
		return 0, 0, errDegenerateSample
	}

	n := float64(len(xs))
	negLogLik := func(t []float64) float64 {
		a, b := math.Exp(t[0]), math.Exp(t[1])
		nll := n*logBeta(a, b) - (a-1)*sumLx - (b-1)*sumL1x
		if math.IsNaN(nll) {
			return math.Inf(1)
		}
		return nll
	}

	a0, b0 := momentEstimate(sum/n, (sumSq-sum*sum/n)/n)
	problem := optimize.Problem{Func: negLogLik}
	start := []float64{math.Log(a0), math.Log(b0)}
	result, err := optimize.Minimize(problem, start, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, 0, fmt.Errorf("beta mle did not converge: %w", err)
	}
	alpha, beta = math.Exp(result.X[0]), math.Exp(result.X[1])
	if !isFinitePositive(alpha) || !isFinitePositive(beta) || math.IsInf(result.F, 0) {
		return 0, 0, fmt.Errorf("beta mle produced unusable shapes a=%g b=%g", alpha, beta)
	}
	return alpha, beta, nil
}

// momentEstimate returns the method-of-moments Beta shape estimate for a
// sample with the given mean and (biased) variance, clamped away from the
// axes so the optimizer always has a workable start.
func momentEstimate(mean, variance float64) (a, b float64) {
	const floor = 1e-3
	if variance <= 0 {
		return 1, 1
	}
	common := mean*(1-mean)/variance - 1
	a = mean * common
	b = (1 - mean) * common
	if !isFinitePositive(a) || a < floor {
		a = floor
	}
	if !isFinitePositive(b) || b < floor {
		b = floor
	}
	return a, b
}

// logBeta is ln B(a, b) via log-gamma.
func logBeta(a, b float64) float64 {
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	return la + lb - lab
}

func isFinitePositive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}
