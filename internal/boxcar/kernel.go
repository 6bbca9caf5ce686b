package boxcar

import "math"

// Kernel is a 3x3x3 array of non-negative integer weights over the filter
// neighborhood. Axis order is (time offset, beam offset, gate offset), each
// index 0..2 standing for offsets -1, 0, +1.
type Kernel [3][3][3]int

// DefaultKernel returns the fixed discretized isotropic smoothing kernel:
// weight 5 at the center, 3 on face-adjacent cells, 2 on edge-adjacent
// cells and 1 on corners.
func DefaultKernel() Kernel {
	return Kernel{
		{{1, 2, 1}, {2, 3, 2}, {1, 2, 1}},
		{{2, 3, 2}, {3, 5, 3}, {2, 3, 2}},
		{{1, 2, 1}, {2, 3, 2}, {1, 2, 1}},
	}
}

// GaussianKernel derives an anisotropic kernel from independent per-axis
// standard deviations sigma = (time, beam, gate), evaluating the separable
// 3-D Gaussian at each offset, scaling by baseWeight and flooring to
// integers. Small sigmas legitimately floor corner weights to zero, which
// is equivalent to excluding those cells.
func GaussianKernel(sigma [3]float64, baseWeight float64) Kernel {
	var k Kernel
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for n := 0; n < 3; n++ {
				di, dj, dn := float64(i-1), float64(j-1), float64(n-1)
				g := math.Exp(-(di*di/(2*sigma[0]*sigma[0]) +
					dj*dj/(2*sigma[1]*sigma[1]) +
					dn*dn/(2*sigma[2]*sigma[2])))
				k[i][j][n] = int(math.Floor(g * baseWeight))
			}
		}
	}
	return k
}

// Total returns the sum of all 27 weights.
func (k Kernel) Total() int {
	total := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for n := 0; n < 3; n++ {
				total += k[i][j][n]
			}
		}
	}
	return total
}
