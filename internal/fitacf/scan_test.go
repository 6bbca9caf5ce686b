package fitacf

import (
	"testing"
	"time"
)

func beamAt(bmnum int, ts time.Time, freq, noise float64) *Beam {
	return &Beam{Bmnum: bmnum, Time: ts, Freq: freq, SkyNoise: noise, NRang: 75}
}

func TestScanUpdateTime(t *testing.T) {
	t0 := time.Date(2015, 3, 17, 3, 0, 0, 0, time.UTC)
	s := NewScan("normal")
	s.Beams = []*Beam{
		beamAt(2, t0.Add(10*time.Second), 12000, 15),
		beamAt(0, t0, 11000, 5),
		beamAt(1, t0.Add(5*time.Second), 13000, 10),
	}
	s.UpdateTime()

	if !s.STime.Equal(t0) {
		t.Errorf("STime = %v, want %v", s.STime, t0)
	}
	if !s.ETime.Equal(t0.Add(10 * time.Second)) {
		t.Errorf("ETime = %v, want %v", s.ETime, t0.Add(10*time.Second))
	}
	if s.Freq != 12000 {
		t.Errorf("averaged freq = %v, want 12000", s.Freq)
	}
	if s.SkyNoise != 10 {
		t.Errorf("averaged noise = %v, want 10", s.SkyNoise)
	}
}

func TestScanUpdateTimeEmpty(t *testing.T) {
	s := NewScan("normal")
	s.Beams = []*Beam{beamAt(0, time.Now(), 1, 1)}
	s.UpdateTime()
	s.Beams = nil
	s.UpdateTime()
	if !s.STime.IsZero() || !s.ETime.IsZero() || s.Freq != 0 {
		t.Errorf("empty scan should reset bounds, got %+v", s)
	}
}

func TestScanSortAndFind(t *testing.T) {
	t0 := time.Now()
	s := NewScan("normal")
	s.Beams = []*Beam{
		beamAt(3, t0.Add(time.Second), 0, 0),
		beamAt(1, t0.Add(3*time.Second), 0, 0),
		beamAt(2, t0, 0, 0),
	}
	s.SortByBeam()
	for i, want := range []int{1, 2, 3} {
		if s.Beams[i].Bmnum != want {
			t.Fatalf("beam order %d = %d, want %d", i, s.Beams[i].Bmnum, want)
		}
	}
	s.SortByTime()
	if s.Beams[0].Bmnum != 2 {
		t.Errorf("time order starts with beam %d, want 2", s.Beams[0].Bmnum)
	}
	if got := s.FindBeam(3); got == nil || got.Bmnum != 3 {
		t.Errorf("FindBeam(3) = %v", got)
	}
	if got := s.FindBeam(9); got != nil {
		t.Errorf("FindBeam(9) = %v, want nil", got)
	}
	var nilScan *Scan
	if nilScan.FindBeam(0) != nil {
		t.Error("FindBeam on nil scan should return nil")
	}
}

func TestFindBeamLastMatchWins(t *testing.T) {
	t0 := time.Now()
	s := NewScan("normal")
	s.Beams = []*Beam{
		beamAt(5, t0, 11000, 1),
		beamAt(3, t0.Add(time.Second), 12000, 2),
		beamAt(5, t0.Add(2*time.Second), 13000, 3),
	}
	got := s.FindBeam(5)
	if got == nil {
		t.Fatal("FindBeam(5) = nil")
	}
	// a duplicate beam number resolves to the latest report
	if got.Freq != 13000 {
		t.Errorf("FindBeam kept freq %v, want the last duplicate's 13000", got.Freq)
	}
}

func TestAssembleScans(t *testing.T) {
	t0 := time.Date(2017, 3, 17, 0, 0, 0, 0, time.UTC)
	mk := func(bmnum int, offset time.Duration, scanFlag int) *Beam {
		b := beamAt(bmnum, t0.Add(offset), 12000, 10)
		b.ScanFlag = scanFlag
		return b
	}
	beams := []*Beam{
		mk(0, 0, 1),
		mk(1, 3*time.Second, 0),
		mk(2, 6*time.Second, 0),
		mk(0, 60*time.Second, 1), // new sweep boundary
		mk(1, 63*time.Second, 0),
	}
	scans := AssembleScans(beams, "normal")
	if len(scans) != 2 {
		t.Fatalf("got %d scans, want 2", len(scans))
	}
	if len(scans[0].Beams) != 3 || len(scans[1].Beams) != 2 {
		t.Errorf("scan sizes = %d/%d, want 3/2", len(scans[0].Beams), len(scans[1].Beams))
	}
	if !scans[1].STime.Equal(t0.Add(60 * time.Second)) {
		t.Errorf("second scan STime = %v", scans[1].STime)
	}

	// a boundary flag repeating the previous timestamp stays in the scan
	dup := []*Beam{
		mk(0, 0, 1),
		mk(1, 0, 1), // same time, flagged: interleaved channel report
		mk(2, 3*time.Second, 0),
	}
	scans = AssembleScans(dup, "normal")
	if len(scans) != 1 {
		t.Errorf("duplicate boundary timestamp split the scan: %d scans", len(scans))
	}

	if AssembleScans(nil, "normal") != nil {
		t.Error("no beams should assemble to no scans")
	}
}
