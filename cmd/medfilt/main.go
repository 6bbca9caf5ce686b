// Command medfilt runs the boxcar median filter over a sweep sequence.
// It reads an already-parsed scan sequence from JSON, slides the 3-sweep
// window across it on a worker pool, and writes the filtered gates to CSV
// and optionally to a SQLite run store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/shibaji7/uah/internal/boxcar"
	"github.com/shibaji7/uah/internal/config"
	"github.com/shibaji7/uah/internal/fitacf"
	"github.com/shibaji7/uah/internal/storage/sqlite"
	"github.com/shibaji7/uah/internal/version"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "scan sequence JSON file (required)")
		csvPath    = flag.String("csv", "", "write filtered gates to this CSV file")
		dbPath     = flag.String("db", "", "persist the run to this SQLite database")
		paramsPath = flag.String("params", "", "JSON parameter file overlaying the flag defaults")
		radar      = flag.String("radar", "", "radar code recorded with persisted runs")
		thresh     = flag.Float64("thresh", 0.4, "neighborhood completeness threshold")
		pbnd       = flag.String("pbnd", "0.2,0.8", "lower,upper scatter probability bounds")
		pth        = flag.Float64("pth", 0.25, "Beta CDF evaluation point")
		gflgType   = flag.Int("gflg-type", -1, "precomputed flag variant feeding the box (-1 = recorded flag)")
		sigma      = flag.String("sigma", "", "t,b,g Gaussian kernel sigmas (empty = fixed kernel)")
		baseWeight = flag.Float64("base-weight", 5, "Gaussian kernel base weight")
		workers    = flag.Int("workers", runtime.NumCPU(), "filter worker count")
		legacy     = flag.Bool("legacy", false, "run the legacy-only filter (no v_mad/conv/kde)")
		showVer    = flag.Bool("version", false, "print build information and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("medfilt %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *inputPath == "" {
		flag.Usage()
		log.Fatal("medfilt: -input is required")
	}

	f := boxcar.NewFilter()
	f.Thresh = *thresh
	f.Pth = *pth
	f.Variant = fitacf.FlagVariant(*gflgType)
	if !f.Variant.Valid() {
		log.Fatalf("medfilt: -gflg-type %d is not a flag variant", *gflgType)
	}
	bounds, err := parseCSVFloatSlice(*pbnd)
	if err != nil || len(bounds) != 2 || bounds[0] > bounds[1] {
		log.Fatalf("medfilt: -pbnd must be two ascending fractions, got %q", *pbnd)
	}
	f.Pbnd = [2]float64{bounds[0], bounds[1]}
	if *sigma != "" {
		sig, err := parseCSVFloatSlice(*sigma)
		if err != nil || len(sig) != 3 {
			log.Fatalf("medfilt: -sigma must be three floats, got %q", *sigma)
		}
		f.Kernel = boxcar.GaussianKernel([3]float64{sig[0], sig[1], sig[2]}, *baseWeight)
	}

	runner := boxcar.NewRunner(f)
	runner.Workers = *workers
	runner.Legacy = *legacy

	if *paramsPath != "" {
		params, err := config.Load(*paramsPath)
		if err != nil {
			log.Fatalf("medfilt: %v", err)
		}
		params.Apply(f, runner)
	}

	in, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("medfilt: open input: %v", err)
	}
	scans, err := fitacf.ReadScansJSON(in)
	in.Close()
	if err != nil {
		log.Fatalf("medfilt: %v", err)
	}
	log.Printf("medfilt: loaded %d scans from %s", len(scans), *inputPath)

	filtered, winErrs, err := runner.Run(context.Background(), scans)
	if err != nil {
		log.Fatalf("medfilt: %v", err)
	}
	for _, we := range winErrs {
		log.Printf("medfilt: %v", we)
	}

	kept := make([]*fitacf.Scan, 0, len(filtered))
	for _, s := range filtered {
		if s != nil {
			kept = append(kept, s)
		}
	}
	log.Printf("medfilt: filtered %d/%d windows", len(kept), len(filtered))

	if *csvPath != "" {
		if err := writeCSV(*csvPath, kept); err != nil {
			log.Fatalf("medfilt: %v", err)
		}
		log.Printf("medfilt: wrote %s", *csvPath)
	}

	if *dbPath != "" {
		runID, err := persistRun(*dbPath, *radar, f, filtered)
		if err != nil {
			log.Fatalf("medfilt: %v", err)
		}
		log.Printf("medfilt: persisted run %s to %s", runID, *dbPath)
	}
}

func writeCSV(path string, scans []*fitacf.Scan) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer out.Close()
	return fitacf.WriteCSV(out, scans)
}

func persistRun(path, radar string, f *boxcar.Filter, filtered []*fitacf.Scan) (string, error) {
	store, err := sqlite.Open(path)
	if err != nil {
		return "", err
	}
	defer store.Close()

	run := &sqlite.Run{
		Radar:       radar,
		Thresh:      f.Thresh,
		Pth:         f.Pth,
		PbndLow:     f.Pbnd[0],
		PbndHigh:    f.Pbnd[1],
		GflgVariant: int(f.Variant),
		ScanCount:   len(filtered),
	}
	if err := store.InsertRun(run); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	for i, s := range filtered {
		if s == nil {
			continue
		}
		if err := store.InsertScan(run.RunID, i, s); err != nil {
			return "", fmt.Errorf("insert scan %d: %w", i, err)
		}
	}
	return run.RunID, nil
}

// parseCSVFloatSlice parses a comma-separated list of floats.
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
