package cop

import "fmt"

// ZeroFillPolicy selects how zero samples are replaced before COP is
// computed.
type ZeroFillPolicy string

const (
	// HoldLastValue forward-fills zeros with the last non-zero sample, then
	// back-fills any leading zeros with the first non-zero sample. A channel
	// with no non-zero sample is left as zeros.
	HoldLastValue ZeroFillPolicy = "hold_last_value"
	// ReplaceWithOne substitutes 1 for every zero sample.
	ReplaceWithOne ZeroFillPolicy = "replace_with_one"
)

// ParseZeroFillPolicy validates a policy name. The empty string selects
// HoldLastValue.
func ParseZeroFillPolicy(s string) (ZeroFillPolicy, error) {
	switch ZeroFillPolicy(s) {
	case "", HoldLastValue:
		return HoldLastValue, nil
	case ReplaceWithOne:
		return ReplaceWithOne, nil
	}
	return "", fmt.Errorf("unknown zero fill policy %q", s)
}

// Apply returns a copy of x with zero samples replaced.
func (p ZeroFillPolicy) Apply(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	if p == ReplaceWithOne {
		for i, v := range out {
			if v == 0 {
				out[i] = 1
			}
		}
		return out
	}

	first := -1
	for i, v := range out {
		if v != 0 {
			if first < 0 {
				first = i
			}
			continue
		}
		if first >= 0 {
			out[i] = out[i-1]
		}
	}
	if first > 0 {
		for i := 0; i < first; i++ {
			out[i] = out[first]
		}
	}
	return out
}
