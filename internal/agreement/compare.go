package agreement

import (
	"math"
	"sort"

	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/sway/pipeline"
)

// Domain tells which feature set a feature comes from.
type Domain string

const (
	TimeDomain      Domain = "time"
	FrequencyDomain Domain = "frequency"
)

// PairedTrial is one trial recorded by both devices.
type PairedTrial struct {
	Key   string
	Board pipeline.Document
	Plate pipeline.Document
}

// Match pairs documents by subject, balance board and trial. Documents
// whose device is neither code, or without a counterpart, are dropped.
// The result is sorted by key.
func Match(docs []pipeline.Document) []PairedTrial {
	boards := make(map[string]pipeline.Document)
	plates := make(map[string]pipeline.Document)
	for _, d := range docs {
		key := d.Info().Key()
		switch d.Device {
		case pipeline.DeviceBoard:
			boards[key] = d
		case pipeline.DeviceForcePlate:
			plates[key] = d
		}
	}
	var out []PairedTrial
	for key, b := range boards {
		if p, ok := plates[key]; ok {
			out = append(out, PairedTrial{Key: key, Board: b, Plate: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// FeatureAgreement is the device comparison of one feature. Statistic
// fields are NaN when too few finite pairs exist.
type FeatureAgreement struct {
	Feature string
	Domain  Domain
	N       int

	Board Summary
	Plate Summary
	// PerBoard splits the summaries by balance board id: [board, plate].
	PerBoard map[string][2]Summary

	TTest       TestResult
	Spearman    TestResult
	BlandAltman BlandAltman
	ICC         float64

	// BoardValues and PlateValues are the finite pairs, index-aligned.
	BoardValues []float64
	PlateValues []float64
}

// Compare computes agreement for every feature present in the board
// documents, time features first, in document order. A pair contributes
// to a feature only when both values are finite.
func Compare(pairs []PairedTrial) []FeatureAgreement {
	var out []FeatureAgreement
	for _, domain := range []Domain{TimeDomain, FrequencyDomain} {
		for _, name := range featureNames(pairs, domain) {
			out = append(out, compareFeature(pairs, domain, name))
		}
	}
	return out
}

func featureSet(d pipeline.Document, domain Domain) sway.FeatureSet {
	if domain == TimeDomain {
		return d.TimeFeatures
	}
	return d.FrequencyFeatures
}

func featureNames(pairs []PairedTrial, domain Domain) []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range pairs {
		for _, n := range featureSet(p.Board, domain).Names() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

func compareFeature(pairs []PairedTrial, domain Domain, name string) FeatureAgreement {
	fa := FeatureAgreement{Feature: name, Domain: domain, PerBoard: make(map[string][2]Summary)}
	byBoard := make(map[string][2][]float64)
	for _, p := range pairs {
		b := featureSet(p.Board, domain).Value(name)
		f := featureSet(p.Plate, domain).Value(name)
		if !isFinite(b) || !isFinite(f) {
			continue
		}
		fa.BoardValues = append(fa.BoardValues, b)
		fa.PlateValues = append(fa.PlateValues, f)
		v := byBoard[p.Board.BalanceBoard]
		v[0], v[1] = append(v[0], b), append(v[1], f)
		byBoard[p.Board.BalanceBoard] = v
	}
	fa.N = len(fa.BoardValues)
	fa.Board = Describe(fa.BoardValues)
	fa.Plate = Describe(fa.PlateValues)
	for id, v := range byBoard {
		fa.PerBoard[id] = [2]Summary{Describe(v[0]), Describe(v[1])}
	}

	nan := TestResult{Statistic: math.NaN(), P: math.NaN()}
	var err error
	if fa.TTest, err = PairedTTest(fa.BoardValues, fa.PlateValues); err != nil {
		fa.TTest = nan
	}
	if fa.Spearman, err = Spearman(fa.BoardValues, fa.PlateValues); err != nil {
		fa.Spearman = nan
	}
	if fa.BlandAltman, err = BlandAltmanLimits(fa.BoardValues, fa.PlateValues); err != nil {
		fa.BlandAltman = BlandAltman{Bias: math.NaN(), SD: math.NaN(), Lower: math.NaN(), Upper: math.NaN()}
	}
	if fa.ICC, err = ICC21(fa.BoardValues, fa.PlateValues); err != nil {
		fa.ICC = math.NaN()
	}
	return fa
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
