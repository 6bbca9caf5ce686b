// Package config loads filter parameter files. The JSON schema mirrors the
// CLI flag surface so a saved parameter set can reproduce a run; fields
// omitted from the file keep their defaults, making partial configs safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shibaji7/uah/internal/boxcar"
	"github.com/shibaji7/uah/internal/fitacf"
)

// FilterParams is the on-disk filter configuration. All fields are
// pointers: nil means "keep the default".
type FilterParams struct {
	Thresh     *float64    `json:"thresh,omitempty"`
	PbndLow    *float64    `json:"pbnd_low,omitempty"`
	PbndHigh   *float64    `json:"pbnd_high,omitempty"`
	Pth        *float64    `json:"pth,omitempty"`
	GflgType   *int        `json:"gflg_type,omitempty"`
	Sigma      *[3]float64 `json:"sigma,omitempty"`       // Gaussian kernel sigmas (time, beam, gate)
	BaseWeight *float64    `json:"base_weight,omitempty"` // Gaussian kernel base weight
	Workers    *int        `json:"workers,omitempty"`
	Legacy     *bool       `json:"legacy,omitempty"`
}

// Load reads a FilterParams JSON file. The path must end in .json and stay
// under 1MB; both limits guard against accidentally pointing the flag at a
// data file.
func Load(path string) (*FilterParams, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("params file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat params file: %w", err)
	}
	const maxFileSize = 1 << 20
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("params file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}
	var p FilterParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse params file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate rejects parameter values the filter cannot honor.
func (p *FilterParams) Validate() error {
	if p.Thresh != nil && (*p.Thresh < 0 || *p.Thresh > 1) {
		return fmt.Errorf("thresh %v outside [0, 1]", *p.Thresh)
	}
	if p.PbndLow != nil && p.PbndHigh != nil && *p.PbndLow > *p.PbndHigh {
		return fmt.Errorf("pbnd bounds not ascending: [%v, %v]", *p.PbndLow, *p.PbndHigh)
	}
	if p.Pth != nil && (*p.Pth <= 0 || *p.Pth >= 1) {
		return fmt.Errorf("pth %v outside (0, 1)", *p.Pth)
	}
	if p.GflgType != nil && !fitacf.FlagVariant(*p.GflgType).Valid() {
		return fmt.Errorf("gflg_type %d is not a flag variant", *p.GflgType)
	}
	if p.Sigma != nil {
		for _, s := range *p.Sigma {
			if s <= 0 {
				return fmt.Errorf("sigma components must be positive, got %v", *p.Sigma)
			}
		}
	}
	return nil
}

// Apply overlays the non-nil parameters onto a filter and runner.
func (p *FilterParams) Apply(f *boxcar.Filter, r *boxcar.Runner) {
	if p.Thresh != nil {
		f.Thresh = *p.Thresh
	}
	if p.PbndLow != nil {
		f.Pbnd[0] = *p.PbndLow
	}
	if p.PbndHigh != nil {
		f.Pbnd[1] = *p.PbndHigh
	}
	if p.Pth != nil {
		f.Pth = *p.Pth
	}
	if p.GflgType != nil {
		f.Variant = fitacf.FlagVariant(*p.GflgType)
	}
	if p.Sigma != nil {
		base := 5.0
		if p.BaseWeight != nil {
			base = *p.BaseWeight
		}
		f.Kernel = boxcar.GaussianKernel(*p.Sigma, base)
	}
	if r == nil {
		return
	}
	if p.Workers != nil {
		r.Workers = *p.Workers
	}
	if p.Legacy != nil {
		r.Legacy = *p.Legacy
	}
}
