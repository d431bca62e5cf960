package sway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// FeatureSet is an ordered, read-only mapping from feature name to value.
// NaN marks a feature that could not be computed for the trial.
type FeatureSet struct {
	names  []string
	values map[string]float64
}

// FeatureSetBuilder accumulates features in emission order.
type FeatureSetBuilder struct {
	fs FeatureSet
}

// NewFeatureSetBuilder returns an empty builder.
func NewFeatureSetBuilder() *FeatureSetBuilder {
	return &FeatureSetBuilder{fs: FeatureSet{values: make(map[string]float64)}}
}

// Add records a feature. Adding a name twice overwrites the value but keeps
// the original position.
func (b *FeatureSetBuilder) Add(name string, v float64) *FeatureSetBuilder {
	if _, ok := b.fs.values[name]; !ok {
		b.fs.names = append(b.fs.names, name)
	}
	b.fs.values[name] = v
	return b
}

// Build returns the feature set. The builder must not be used afterwards.
func (b *FeatureSetBuilder) Build() FeatureSet {
	fs := b.fs
	b.fs = FeatureSet{}
	return fs
}

// Len returns the number of features.
func (f FeatureSet) Len() int { return len(f.names) }

// Names returns the feature names in emission order.
func (f FeatureSet) Names() []string { return append([]string(nil), f.names...) }

// Get returns the value for name and whether it exists.
func (f FeatureSet) Get(name string) (float64, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Value returns the value for name, or NaN when absent.
func (f FeatureSet) Value(name string) float64 {
	v, ok := f.values[name]
	if !ok {
		return math.NaN()
	}
	return v
}

// NaNCount returns how many features are unavailable (NaN or ±Inf).
func (f FeatureSet) NaNCount() int {
	n := 0
	for _, v := range f.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			n++
		}
	}
	return n
}

// MarshalJSON writes features in emission order. Non-finite values are
// written as null.
func (f FeatureSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v := f.values[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a feature object, mapping null to NaN. Key order
// follows the document.
func (f *FeatureSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("feature set: expected object, got %v", tok)
	}
	b := NewFeatureSetBuilder()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("feature set: expected key, got %v", tok)
		}
		var v *float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("feature %q: %w", name, err)
		}
		if v == nil {
			b.Add(name, math.NaN())
		} else {
			b.Add(name, *v)
		}
	}
	*f = b.Build()
	return nil
}
