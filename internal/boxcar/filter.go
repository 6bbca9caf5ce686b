package boxcar

import (
	"errors"
	"math/rand/v2"

	"github.com/shibaji7/uah/internal/fitacf"
)

// Structural contract violations surfaced to the orchestrator. Per-gate and
// per-cell sparseness is modeled in the neighborhood accounting instead.
var (
	// ErrShortWindow means the three-sweep window is incomplete: fewer
	// than three scans, or no center scan. Edge sweeps may be nil
	// (sequence boundaries); the center may not.
	ErrShortWindow = errors.New("boxcar: incomplete three-sweep window")

	// ErrEmptyCenterScan means the center scan carries no beams after
	// preprocessing, which indicates a window sizing bug upstream.
	ErrEmptyCenterScan = errors.New("boxcar: center scan has no beams")
)

// Filter holds the boxcar median filter configuration. The zero value is
// not usable; construct with NewFilter and adjust fields before filtering.
type Filter struct {
	// Thresh is the completeness fraction a range cell's neighborhood
	// must reach to be retained. The legacy default is 0.7; orchestrated
	// batch runs conventionally use 0.4.
	Thresh float64

	// Kernel is the 3x3x3 weight kernel applied to the neighborhood.
	Kernel Kernel

	// Pbnd are the ascending lower/upper probability bounds separating
	// ionospheric, ambiguous and ground classifications.
	Pbnd [2]float64

	// Pth is the Beta CDF evaluation point for the probabilistic
	// classifier.
	Pth float64

	// Variant selects which precomputed ground-scatter flag family feeds
	// the neighborhood box. FlagDefault uses the recorded flag. The
	// legacy output flag is always recomputed from the medians regardless
	// of this setting.
	Variant fitacf.FlagVariant

	src rand.Source
}

// NewFilter returns a filter with the legacy defaults: threshold 0.7, the
// fixed isotropic kernel, probability bounds [0.2, 0.8], CDF evaluation
// point 0.25 and the recorded scatter flag feeding the box.
func NewFilter() *Filter {
	return &Filter{
		Thresh:  0.7,
		Kernel:  DefaultKernel(),
		Pbnd:    [2]float64{0.2, 0.8},
		Pth:     0.25,
		Variant: fitacf.FlagDefault,
	}
}

// SetRandSource pins the random source used for flag noise injection.
// Production runs leave it nil (shared global source); tests pin a PCG
// seed to make the probabilistic classifier deterministic.
func (f *Filter) SetRandSource(src rand.Source) {
	f.src = src
}

// DiscardRepeatedBeams returns a new scan with at most one beam per beam
// number, keeping only beams with at least one valid range cell. The first
// beam after sorting by beam number wins; byTime requests the
// timestamp-stable (bmnum, time) ordering instead. Output beams are sorted
// by beam number and the scan's time bounds recomputed.
func DiscardRepeatedBeams(s *fitacf.Scan, byTime bool) *fitacf.Scan {
	work := &fitacf.Scan{SType: s.SType, Beams: append([]*fitacf.Beam(nil), s.Beams...)}
	if byTime {
		work.SortByBeamTime()
	} else {
		work.SortByBeam()
	}
	out := fitacf.NewScan(s.SType)
	seen := make(map[int]bool)
	for _, b := range work.Beams {
		if seen[b.Bmnum] || len(b.SList) == 0 {
			continue
		}
		seen[b.Bmnum] = true
		out.Beams = append(out.Beams, b)
	}
	out.SortByBeam()
	out.UpdateTime()
	return out
}

// FilterWindow runs the full filter over the center scan of a three-sweep
// window, producing a new scan whose beams carry weighted-median velocity,
// spectral width and power, the velocity MAD, and all three scatter
// classifications for every retained range cell. Edge scans may be nil;
// their cells are excluded from the completeness accounting.
func (f *Filter) FilterWindow(window [3]*fitacf.Scan) (*fitacf.Scan, error) {
	return f.filterWindow(window, false)
}

// LegacyFilterWindow runs the reduced filter: weighted medians and the
// legacy empirical flag only, no dispersion estimate and no proportion or
// probabilistic classification. The neighborhood always uses the recorded
// scatter flag, matching the historical behavior of this method.
func (f *Filter) LegacyFilterWindow(window [3]*fitacf.Scan) (*fitacf.Scan, error) {
	return f.filterWindow(window, true)
}

func (f *Filter) filterWindow(window [3]*fitacf.Scan, legacy bool) (*fitacf.Scan, error) {
	center := window[1]
	if center == nil {
		return nil, ErrShortWindow
	}
	if len(center.Beams) == 0 {
		return nil, ErrEmptyCenterScan
	}

	variant := f.Variant
	if legacy {
		variant = fitacf.FlagDefault
	}

	out := fitacf.NewScan(center.SType)
	for _, b := range center.Beams {
		ob := b.CloneMeta()
		for r := 0; r < b.NRang; r++ {
			box := buildBox(window, b.Bmnum, r, variant)
			sample := collect(&box, &f.Kernel)
			if sample.completeness() < f.Thresh {
				continue
			}
			vMed := median(sample.v)
			wlMed := median(sample.wl)

			ob.SList = append(ob.SList, r)
			ob.V = append(ob.V, vMed)
			ob.WL = append(ob.WL, wlMed)
			ob.PL = append(ob.PL, median(sample.pl))
			// The output flag is always re-derived from the medians,
			// even when a precomputed variant fed the box.
			ob.Gflg = append(ob.Gflg, legacyFlag(vMed, wlMed))
			if legacy {
				continue
			}
			ob.VMAD = append(ob.VMAD, medianAbsDev(sample.v, vMed))
			ob.GflgConv = append(ob.GflgConv, convFlag(&sample, f.Pbnd))
			ob.GflgKDE = append(ob.GflgKDE, kdeFlag(&sample, f.Pbnd, f.Pth, f.src))
		}
		out.Beams = append(out.Beams, ob)
	}
	out.SortByBeam()
	out.UpdateTime()
	return out, nil
}
