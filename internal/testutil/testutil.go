// Package testutil provides shared test utilities and fixtures.
//
// This package centralises signal generators, tolerance assertions and
// acquisition fixtures used across the processing packages' tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertSliceInDelta fails the test if the slices differ in length or any
// element differs by more than delta.
func AssertSliceInDelta(t testing.TB, want, got []float64, delta float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(want[i]-got[i]) > delta {
			t.Errorf("[%d] = %g, want %g (±%g)", i, got[i], want[i], delta)
			return
		}
	}
}

// Sine returns n samples of amp·sin(2π·freq·t) sampled at fs.
func Sine(n int, fs, freq, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return out
}

// Constant returns n copies of v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// WriteTempConfig writes body to a file named name in a fresh temp
// directory and returns its path.
func WriteTempConfig(t testing.TB, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

// Export mirrors the JSON acquisition export layout.
type Export struct {
	AnalogFrequency float64                `json:"analog_frequency"`
	PointFrequency  float64                `json:"point_frequency"`
	Analogs         map[string][][]float64 `json:"analogs,omitempty"`
	Points          map[string][][]float64 `json:"points,omitempty"`
}

// Bytes encodes e as JSON.
func (e Export) Bytes(t testing.TB) []byte {
	t.Helper()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("encode export: %v", err)
	}
	return data
}

// Column wraps samples as a single-column channel.
func Column(vals []float64) [][]float64 {
	out := make([][]float64, len(vals))
	for i, v := range vals {
		out[i] = []float64{v}
	}
	return out
}

// PlateExport builds a force plate recording of n samples at fs with
// constant forces and moments.
func PlateExport(n int, fs, fx, fy, fz, mx, my float64) Export {
	return Export{
		AnalogFrequency: fs,
		PointFrequency:  fs / 10,
		Analogs: map[string][][]float64{
			"Fx1": Column(Constant(n, fx)),
			"Fy1": Column(Constant(n, fy)),
			"Fz1": Column(Constant(n, fz)),
			"Mx1": Column(Constant(n, mx)),
			"My1": Column(Constant(n, my)),
		},
	}
}

// BoardExport builds a balance board recording of n samples at fs from
// per-corner loads (TR, BR, TL, BL), with a device clock starting at
// start and ticking once per sample.
func BoardExport(n int, fs float64, start time.Time, tr, br, tl, bl []float64) Export {
	clock := map[string][]float64{}
	labels := []string{"year", "month", "day", "hour", "minute", "second", "milisecond"}
	for i := 0; i < n; i++ {
		at := start.Add(time.Duration(math.Round(float64(i) * float64(time.Second) / fs)))
		fields := []int{at.Year(), int(at.Month()), at.Day(), at.Hour(), at.Minute(), at.Second(), at.Nanosecond() / int(time.Millisecond)}
		for j, l := range labels {
			clock[l] = append(clock[l], float64(fields[j]))
		}
	}
	analogs := make(map[string][][]float64, len(labels))
	for _, l := range labels {
		analogs[l] = Column(clock[l])
	}
	return Export{
		AnalogFrequency: fs * 10,
		PointFrequency:  fs,
		Analogs:         analogs,
		Points: map[string][][]float64{
			"TopRight Kg":    Column(tr),
			"BottomRight Kg": Column(br),
			"TopLeft Kg":     Column(tl),
			"BottomLeft Kg":  Column(bl),
		},
	}
}
