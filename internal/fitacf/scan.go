// Package fitacf holds the in-memory sweep data model consumed and produced
// by the boxcar filter: Gate snapshots, Beam sectors with their precomputed
// ground-scatter flag family, and Scan collections with derived time bounds
// and averaged sweep parameters. Parsing of the radar's binary record format
// is an external concern; this package starts from already-decoded values.
package fitacf

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Scan is an ordered collection of beams sharing one sweep window.
type Scan struct {
	STime time.Time `json:"stime"`
	ETime time.Time `json:"etime"`
	SType string    `json:"stype"` // scan mode, e.g. "normal" or "themis"
	Beams []*Beam   `json:"beams"`

	// Averaged sweep parameters, recomputed by UpdateTime.
	Freq     float64 `json:"tfreq"`
	SkyNoise float64 `json:"noise.sky"`
}

// NewScan returns an empty scan of the given mode.
func NewScan(stype string) *Scan {
	return &Scan{SType: stype}
}

// UpdateTime recomputes the scan's time bounds (min and max beam timestamp)
// and the averaged frequency and sky noise. Must be called whenever the beam
// list changes. A scan with no beams keeps zero times and averages.
func (s *Scan) UpdateTime() {
	if len(s.Beams) == 0 {
		s.STime, s.ETime = time.Time{}, time.Time{}
		s.Freq, s.SkyNoise = 0, 0
		return
	}
	s.STime, s.ETime = s.Beams[0].Time, s.Beams[0].Time
	freqs := make([]float64, len(s.Beams))
	noise := make([]float64, len(s.Beams))
	for i, b := range s.Beams {
		if b.Time.Before(s.STime) {
			s.STime = b.Time
		}
		if b.Time.After(s.ETime) {
			s.ETime = b.Time
		}
		freqs[i] = b.Freq
		noise[i] = b.SkyNoise
	}
	s.Freq = stat.Mean(freqs, nil)
	s.SkyNoise = stat.Mean(noise, nil)
}

// SortByBeam orders the beams by beam number ascending (filtering order).
func (s *Scan) SortByBeam() {
	sort.SliceStable(s.Beams, func(i, j int) bool {
		return s.Beams[i].Bmnum < s.Beams[j].Bmnum
	})
}

// SortByBeamTime orders the beams by (beam number, timestamp), the
// timestamp-stable ordering used when deduplicating repeated beams.
func (s *Scan) SortByBeamTime() {
	sort.SliceStable(s.Beams, func(i, j int) bool {
		bi, bj := s.Beams[i], s.Beams[j]
		if bi.Bmnum != bj.Bmnum {
			return bi.Bmnum < bj.Bmnum
		}
		return bi.Time.Before(bj.Time)
	})
}

// SortByTime orders the beams by timestamp (summary order).
func (s *Scan) SortByTime() {
	sort.SliceStable(s.Beams, func(i, j int) bool {
		return s.Beams[i].Time.Before(s.Beams[j].Time)
	})
}

// FindBeam returns the last beam with the given beam number, or nil. On a
// raw sweep carrying duplicate beam numbers the latest report shadows the
// earlier ones; deduplicated sweeps hold at most one beam per number, so
// the distinction disappears after preprocessing. Lookup is linear; sweeps
// carry tens of beams at most.
func (s *Scan) FindBeam(bmnum int) *Beam {
	if s == nil {
		return nil
	}
	for i := len(s.Beams) - 1; i >= 0; i-- {
		if s.Beams[i].Bmnum == bmnum {
			return s.Beams[i]
		}
	}
	return nil
}
