package fitacf

import (
	"fmt"
	"math"
	"time"
)

// Beam holds one angular sector's range-cell measurements for one sweep.
// The per-gate slices are parallel and aligned to SList, the sparse list of
// range-gate indices that carry valid measurements; gates not in SList are
// absent, not zero. Finalize must be called once after construction to
// validate the parallel slices and precompute the ground-scatter flag family.
type Beam struct {
	Bmnum    int       `json:"bmnum"`
	Time     time.Time `json:"time"`
	Freq     float64   `json:"tfreq"`     // transmit frequency (kHz)
	SkyNoise float64   `json:"noise.sky"` // sky noise level
	NRang    int       `json:"nrang"`     // number of range gates along the beam
	ScanFlag int       `json:"scan"`      // nonzero marks the first beam of a sweep

	SList []int     `json:"slist"`
	V     []float64 `json:"v"`
	WL    []float64 `json:"w_l"`
	PL    []float64 `json:"p_l"`
	VE    []float64 `json:"v_e,omitempty"`
	Gflg  []int     `json:"gflg"`

	// GSFlg is the precomputed ground-scatter flag family, one slice per
	// FlagVariant, each aligned to SList. Populated by Finalize.
	GSFlg [NumFlagVariants][]int `json:"-"`

	// Filter outputs. Empty on beams that have not been through the boxcar
	// filter; aligned to SList on beams that have.
	VMAD     []float64 `json:"v_mad,omitempty"`
	GflgConv []int     `json:"gflg_conv,omitempty"`
	GflgKDE  []int     `json:"gflg_kde,omitempty"`
}

// Finalize validates the parallel measurement slices against SList and
// precomputes the four ground-scatter flag variants. It must run before the
// beam is handed to the filter; NewGate indexes the slices unchecked.
func (b *Beam) Finalize() error {
	n := len(b.SList)
	if len(b.V) != n || len(b.WL) != n || len(b.PL) != n || len(b.Gflg) != n {
		return fmt.Errorf("beam %d at %s: parallel slices disagree with slist length %d (v=%d w_l=%d p_l=%d gflg=%d)",
			b.Bmnum, b.Time.Format(time.RFC3339), n, len(b.V), len(b.WL), len(b.PL), len(b.Gflg))
	}
	if len(b.VE) != 0 && len(b.VE) != n {
		return fmt.Errorf("beam %d at %s: v_e length %d does not match slist length %d",
			b.Bmnum, b.Time.Format(time.RFC3339), len(b.VE), n)
	}
	if b.ScanFlag != 0 {
		b.ScanFlag = 1
	}
	b.estimateGSFlags()
	return nil
}

// estimateGSFlags computes the flag family from the empirical criteria.
func (b *Beam) estimateGSFlags() {
	for variant := FlagVariant(0); variant < NumFlagVariants; variant++ {
		flags := make([]int, len(b.SList))
		for i := range b.SList {
			flags[i] = estimateGS(variant, b.V[i], b.WL[i])
		}
		b.GSFlg[variant] = flags
	}
}

// estimateGS applies one empirical ground-scatter criterion to a single
// velocity/width pair. Returns 1 for ground scatter, 0 for ionospheric.
func estimateGS(variant FlagVariant, v, w float64) int {
	var gs bool
	switch variant {
	case FlagSundeen:
		gs = math.Abs(v)+w/3 < 30
	case FlagBlanchard:
		gs = math.Abs(v)+0.4*w < 60
	case FlagBlanchard2009:
		gs = math.Abs(v)-0.139*w+0.00113*w*w < 33.1
	case FlagChakraborty:
		gs = w-(50-0.7*(v+5)*(v+5)) < 0
	}
	if gs {
		return 1
	}
	return 0
}

// CloneMeta returns a new Beam carrying b's scalar sweep metadata (beam
// number, timestamp, frequency, noise, gate count, scan flag) with all
// per-gate slices empty. The filter uses it to seed output beams so that no
// stale measurement vectors leak into the filtered scan.
func (b *Beam) CloneMeta() *Beam {
	return &Beam{
		Bmnum:    b.Bmnum,
		Time:     b.Time,
		Freq:     b.Freq,
		SkyNoise: b.SkyNoise,
		NRang:    b.NRang,
		ScanFlag: b.ScanFlag,
	}
}
