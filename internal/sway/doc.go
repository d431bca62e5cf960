// Package sway holds the value types shared by the postural-sway processing
// stages: COP series, feature sets and spectral densities.
//
// The stage packages (resample, cop, conditioning, timefeatures,
// freqfeatures) each consume one of these values and return a new one.
// None of them mutate their input, so trials can be processed in parallel
// without locking. The pipeline package is the composition root.
package sway
