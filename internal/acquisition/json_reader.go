package acquisition

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/sway.report/internal/fsutil"
)

// export is the on-disk layout of a converted acquisition file.
type export struct {
	AnalogFrequency float64                `json:"analog_frequency"`
	PointFrequency  float64                `json:"point_frequency"`
	Analogs         map[string][][]float64 `json:"analogs"`
	Points          map[string][][]float64 `json:"points"`
}

// JSONReader reads acquisitions exported to JSON.
type JSONReader struct {
	FS     fsutil.FileSystem
	Labels Labels
	// RequireAccelerometer fails board reads that lack the accelerometer
	// channel. By default it is read only when present.
	RequireAccelerometer bool
}

// NewJSONReader returns a reader over the OS filesystem.
func NewJSONReader(labels Labels) *JSONReader {
	return &JSONReader{FS: fsutil.OSFileSystem{}, Labels: labels}
}

// Read implements Reader.
func (r *JSONReader) Read(path string, balanceBoard bool) (*RawChannelSet, error) {
	data, err := r.FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read acquisition %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyAcquisition)
	}
	var exp export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrCorruptAcquisition, err)
	}

	var set *RawChannelSet
	if balanceBoard {
		set, err = r.readBoard(&exp)
	} else {
		set, err = r.readPlate(&exp)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func (r *JSONReader) readPlate(exp *export) (*RawChannelSet, error) {
	channels, err := pick(exp.Analogs, r.Labels.ForcePlate)
	if err != nil {
		return nil, err
	}
	return &RawChannelSet{Channels: channels, Frequency: exp.AnalogFrequency}, nil
}

func (r *JSONReader) readBoard(exp *export) (*RawChannelSet, error) {
	channels, err := pick(exp.Points, r.Labels.BoardCorners)
	if err != nil {
		return nil, err
	}
	if acc := r.Labels.Accelerometer; acc != "" {
		if ch, ok := exp.Points[acc]; ok {
			channels[acc] = ch
		} else if r.RequireAccelerometer {
			return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, acc)
		}
	}

	clock, err := pick(exp.Analogs, r.Labels.Time)
	if err != nil {
		return nil, err
	}
	fields := make([][]float64, len(r.Labels.Time))
	for i, label := range r.Labels.Time {
		fields[i] = flatten(clock[label])
	}
	ts, err := Timestamps(fields)
	if err != nil {
		return nil, err
	}
	return &RawChannelSet{Channels: channels, Frequency: exp.PointFrequency, Timestamps: ts}, nil
}

func pick(src map[string][][]float64, labels []string) (map[string][][]float64, error) {
	out := make(map[string][][]float64, len(labels))
	for _, label := range labels {
		ch, ok := src[label]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, label)
		}
		out[label] = ch
	}
	return out, nil
}

// flatten takes the first column of every sample.
func flatten(ch [][]float64) []float64 {
	out := make([]float64, 0, len(ch))
	for _, row := range ch {
		if len(row) == 0 {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, row[0])
	}
	return out
}

// Timestamps turns the device-reported date and time fields (year, month,
// day, hour, minute, second, millisecond; one slice per field) into seconds
// elapsed since the first sample.
func Timestamps(fields [][]float64) ([]float64, error) {
	if len(fields) != 7 {
		return nil, fmt.Errorf("%w: expected 7 date/time fields, got %d", ErrCorruptAcquisition, len(fields))
	}
	n := len(fields[0])
	for _, f := range fields {
		if len(f) != n {
			return nil, fmt.Errorf("%w: date/time fields differ in length", ErrCorruptAcquisition)
		}
	}
	if n == 0 {
		return nil, ErrEmptyAcquisition
	}

	at := func(i int) (time.Time, error) {
		var v [7]int
		for j := range v {
			f := fields[j][i]
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return time.Time{}, fmt.Errorf("%w: non-finite date/time field at sample %d", ErrCorruptAcquisition, i)
			}
			v[j] = int(f)
		}
		if v[1] < 1 || v[1] > 12 || v[2] < 1 || v[2] > 31 || v[6] < 0 || v[6] > 999 {
			return time.Time{}, fmt.Errorf("%w: invalid date/time at sample %d", ErrCorruptAcquisition, i)
		}
		return time.Date(v[0], time.Month(v[1]), v[2], v[3], v[4], v[5], v[6]*int(time.Millisecond), time.UTC), nil
	}

	start, err := at(0)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		ti, err := at(i)
		if err != nil {
			return nil, err
		}
		out[i] = ti.Sub(start).Seconds()
	}
	return out, nil
}
