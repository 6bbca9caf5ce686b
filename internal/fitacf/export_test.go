package fitacf

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"
)

func exportScan(t *testing.T) *Scan {
	t.Helper()
	b := &Beam{
		Bmnum: 6, Time: time.Date(2015, 3, 17, 3, 2, 0, 0, time.UTC),
		Freq: 12000, SkyNoise: 8, NRang: 75,
		SList:    []int{20, 21},
		V:        []float64{42.5, -10},
		WL:       []float64{30, 55},
		PL:       []float64{12, 9},
		Gflg:     []int{1, 0},
		VMAD:     []float64{1.5, 2.5},
		GflgConv: []int{1, 2},
		GflgKDE:  []int{1, 0},
	}
	s := NewScan("normal")
	s.Beams = []*Beam{b}
	s.UpdateTime()
	return s
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*Scan{exportScan(t)}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading produced CSV: %v", err)
	}
	if len(records) != 3 { // header + two gates
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0][0] != "time" || records[0][4] != "slist" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][4] != "20" || records[2][4] != "21" {
		t.Errorf("gate columns = %q/%q", records[1][4], records[2][4])
	}
	if records[1][5] != "42.5" {
		t.Errorf("velocity column = %q, want 42.5", records[1][5])
	}
	if records[1][10] != "1" || records[2][10] != "2" {
		t.Errorf("gflg_conv columns = %q/%q", records[1][10], records[2][10])
	}
}

func TestWriteCSVUnfilteredBeam(t *testing.T) {
	s := exportScan(t)
	s.Beams[0].VMAD = nil
	s.Beams[0].GflgConv = nil
	s.Beams[0].GflgKDE = nil
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*Scan{s}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading produced CSV: %v", err)
	}
	if records[1][8] != "" || records[1][10] != "" {
		t.Errorf("classification columns should be empty on unfiltered beams: %v", records[1])
	}
}

func TestScansJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := []*Scan{exportScan(t)}
	if err := WriteScansJSON(&buf, in); err != nil {
		t.Fatalf("WriteScansJSON: %v", err)
	}
	out, err := ReadScansJSON(&buf)
	if err != nil {
		t.Fatalf("ReadScansJSON: %v", err)
	}
	if len(out) != 1 || len(out[0].Beams) != 1 {
		t.Fatalf("round trip lost scans: %+v", out)
	}
	b := out[0].Beams[0]
	if b.Bmnum != 6 || len(b.SList) != 2 || b.V[0] != 42.5 {
		t.Errorf("round trip lost beam data: %+v", b)
	}
	// Finalize ran on read: the flag family exists
	if len(b.GSFlg[FlagSundeen]) != 2 {
		t.Errorf("flag family not precomputed on read")
	}
}

func TestReadScansJSONRejectsMalformedBeam(t *testing.T) {
	bad := `[{"stype":"normal","beams":[{"bmnum":1,"slist":[1,2],"v":[1],"w_l":[1,2],"p_l":[1,2],"gflg":[0,0]}]}]`
	if _, err := ReadScansJSON(strings.NewReader(bad)); err == nil {
		t.Fatal("expected validation error for mismatched parallel slices")
	}
}
