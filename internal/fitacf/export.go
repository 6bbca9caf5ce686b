package fitacf

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// csvHeader lists the flattened per-gate columns, one row per valid range
// cell. Classification columns are empty on unfiltered beams.
var csvHeader = []string{
	"time", "bmnum", "tfreq", "noise.sky", "slist",
	"v", "w_l", "p_l", "v_mad", "gflg", "gflg_conv", "gflg_kde",
}

// WriteCSV flattens a scan sequence into per-gate CSV rows. Beams are
// written in scan order; each beam contributes one row per slist entry.
func WriteCSV(w io.Writer, scans []*Scan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range scans {
		for _, b := range s.Beams {
			for i, gate := range b.SList {
				row := []string{
					b.Time.Format(time.RFC3339),
					strconv.Itoa(b.Bmnum),
					formatFloat(b.Freq),
					formatFloat(b.SkyNoise),
					strconv.Itoa(gate),
					formatFloat(b.V[i]),
					formatFloat(b.WL[i]),
					formatFloat(b.PL[i]),
					floatAt(b.VMAD, i),
					strconv.Itoa(b.Gflg[i]),
					intAt(b.GflgConv, i),
					intAt(b.GflgKDE, i),
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("write csv row: %w", err)
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func floatAt(xs []float64, i int) string {
	if i >= len(xs) {
		return ""
	}
	return formatFloat(xs[i])
}

func intAt(xs []int, i int) string {
	if i >= len(xs) {
		return ""
	}
	return strconv.Itoa(xs[i])
}

// ReadScansJSON decodes a scan sequence from JSON and finalizes every beam,
// validating the parallel slices and precomputing the flag family. This is
// the handover format from the parsing collaborator.
func ReadScansJSON(r io.Reader) ([]*Scan, error) {
	var scans []*Scan
	if err := json.NewDecoder(r).Decode(&scans); err != nil {
		return nil, fmt.Errorf("decode scans: %w", err)
	}
	for si, s := range scans {
		for _, b := range s.Beams {
			if err := b.Finalize(); err != nil {
				return nil, fmt.Errorf("scan %d: %w", si, err)
			}
		}
	}
	return scans, nil
}

// WriteScansJSON encodes a scan sequence as indented JSON.
func WriteScansJSON(w io.Writer, scans []*Scan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(scans)
}
