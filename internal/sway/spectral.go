package sway

// SpectralDensity is a one-sided power spectrum. Frequencies are ascending
// and have the same length as Power.
type SpectralDensity struct {
	Frequencies []float64 `json:"frequencies"`
	Power       []float64 `json:"power"`
}

// Len returns the number of bins.
func (s SpectralDensity) Len() int { return len(s.Frequencies) }

// Restrict returns the bins with lo <= f <= hi. A non-positive hi keeps
// every bin above lo.
func (s SpectralDensity) Restrict(lo, hi float64) SpectralDensity {
	out := SpectralDensity{}
	for i, f := range s.Frequencies {
		if f < lo || (hi > 0 && f > hi) {
			continue
		}
		out.Frequencies = append(out.Frequencies, f)
		out.Power = append(out.Power, s.Power[i])
	}
	return out
}
