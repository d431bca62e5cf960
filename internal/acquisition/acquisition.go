// Package acquisition reads raw device channels from exported acquisition
// files. The force plate is read from the analog channels at the analog
// rate; the balance board from the point channels at the point rate, with
// per-sample timestamps reconstructed from the date/time analog channels.
package acquisition

import (
	"errors"
	"fmt"
)

var (
	// ErrChannelNotFound is returned when a configured label is absent.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrEmptyAcquisition is returned for files with no samples.
	ErrEmptyAcquisition = errors.New("empty acquisition")
	// ErrCorruptAcquisition is returned for files that cannot be decoded or
	// whose channels disagree with each other.
	ErrCorruptAcquisition = errors.New("corrupt acquisition")
)

// RawChannelSet holds the channels read for one device. Every channel has
// the same number of samples; each sample may have several columns.
type RawChannelSet struct {
	Channels  map[string][][]float64
	Frequency float64
	// Timestamps are seconds since the first sample. Only the balance
	// board carries them.
	Timestamps []float64
}

// Reader loads the raw channels of one trial.
type Reader interface {
	Read(path string, balanceBoard bool) (*RawChannelSet, error)
}

// Channel returns the samples recorded under label.
func (r *RawChannelSet) Channel(label string) ([][]float64, error) {
	ch, ok := r.Channels[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, label)
	}
	return ch, nil
}

// Column returns one column of a channel as a flat series.
func (r *RawChannelSet) Column(label string, col int) ([]float64, error) {
	ch, err := r.Channel(label)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(ch))
	for i, row := range ch {
		if col < 0 || col >= len(row) {
			return nil, fmt.Errorf("%w: %q sample %d has no column %d", ErrCorruptAcquisition, label, i, col)
		}
		out[i] = row[col]
	}
	return out, nil
}

// Len returns the common channel length, or 0 for an empty set.
func (r *RawChannelSet) Len() int {
	for _, ch := range r.Channels {
		return len(ch)
	}
	return 0
}

// Validate checks that the set is non-empty, that every channel has the
// same length and that timestamps, when present, line up with the samples
// and never go backwards.
func (r *RawChannelSet) Validate() error {
	if len(r.Channels) == 0 {
		return ErrEmptyAcquisition
	}
	if !(r.Frequency > 0) {
		return fmt.Errorf("%w: sample frequency %g", ErrCorruptAcquisition, r.Frequency)
	}
	n := -1
	for label, ch := range r.Channels {
		if n < 0 {
			n = len(ch)
			continue
		}
		if len(ch) != n {
			return fmt.Errorf("%w: channel %q has %d samples, expected %d", ErrCorruptAcquisition, label, len(ch), n)
		}
	}
	if n == 0 {
		return ErrEmptyAcquisition
	}
	if r.Timestamps != nil {
		if len(r.Timestamps) != n {
			return fmt.Errorf("%w: %d timestamps for %d samples", ErrCorruptAcquisition, len(r.Timestamps), n)
		}
		for i := 1; i < n; i++ {
			if r.Timestamps[i] < r.Timestamps[i-1] {
				return fmt.Errorf("%w: timestamp %d goes backwards", ErrCorruptAcquisition, i)
			}
		}
	}
	return nil
}
