package fitacf

// FlagVariant selects which ground-scatter estimation feeds a Gate snapshot.
// The four non-negative variants index the precomputed flag family on a Beam;
// FlagDefault keeps the flag recorded in the fitted data.
type FlagVariant int

const (
	// FlagDefault uses the beam's recorded ground-scatter flag as-is.
	FlagDefault FlagVariant = -1

	// FlagSundeen: |v| + w/3 < 30 m/s (Sundeen et al.).
	FlagSundeen FlagVariant = 0

	// FlagBlanchard: |v| + 0.4w < 60 m/s (Blanchard et al.).
	FlagBlanchard FlagVariant = 1

	// FlagBlanchard2009: |v| - 0.139w + 0.00113w^2 < 33.1 m/s (Blanchard et al. 2009).
	FlagBlanchard2009 FlagVariant = 2

	// FlagChakraborty: w - (50 - 0.7(v+5)^2) < 0 (modified definition).
	FlagChakraborty FlagVariant = 3
)

// NumFlagVariants is the size of the precomputed flag family on each Beam.
const NumFlagVariants = 4

// Valid reports whether v names a precomputed variant or the recorded default.
func (v FlagVariant) Valid() bool {
	return v >= FlagDefault && v < NumFlagVariants
}

// Gate is a snapshot of one range cell's measurement set, extracted by slist
// index from a Beam. Gates are ephemeral: the boxcar filter builds them while
// resolving a neighborhood and never retains them afterwards.
type Gate struct {
	V    float64 // radial velocity (m/s)
	WL   float64 // spectral width (m/s)
	PL   float64 // lambda power (dB)
	VE   float64 // velocity error (m/s)
	Gflg int     // ground-scatter flag (1 ground, 0 ionospheric)
}

// NewGate extracts the i-th valid range cell of b. The index addresses the
// beam's parallel value slices (slist order), not the physical range gate.
// When variant names a precomputed flag family the snapshot's flag is taken
// from it; FlagDefault keeps the flag the beam carries.
func NewGate(b *Beam, i int, variant FlagVariant) Gate {
	g := Gate{
		V:    b.V[i],
		WL:   b.WL[i],
		PL:   b.PL[i],
		Gflg: b.Gflg[i],
	}
	if len(b.VE) > i {
		g.VE = b.VE[i]
	}
	if variant >= 0 && int(variant) < NumFlagVariants && len(b.GSFlg[variant]) > i {
		g.Gflg = b.GSFlg[variant][i]
	}
	return g
}
