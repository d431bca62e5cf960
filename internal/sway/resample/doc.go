// Package resample moves sway signals onto an evenly spaced time base at a
// target frequency.
//
// Evenly sampled input (the force plate) is resampled with a polyphase
// FIR, an FFT method that hits an exact sample count, or IIR decimation.
// Irregularly timestamped input (the balance board) goes through SWARII,
// a sliding-window average keyed on the reported sample times.
package resample

import "errors"

var (
	// ErrEmptyInput is returned when there is nothing to resample.
	ErrEmptyInput = errors.New("resample: empty input")
	// ErrNonMonotonicTimestamps is returned when SWARII timestamps go backwards.
	ErrNonMonotonicTimestamps = errors.New("resample: timestamps are not monotonically non-decreasing")
	// ErrLengthMismatch is returned when timestamps and values differ in length.
	ErrLengthMismatch = errors.New("resample: timestamp and value lengths differ")
	// ErrInvalidRatio is returned for non-positive factors, counts or frequencies.
	ErrInvalidRatio = errors.New("resample: invalid resampling ratio")
)
