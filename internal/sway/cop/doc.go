// Package cop computes centre-of-pressure displacement from raw device
// channels.
//
// A force plate reports forces and moments; COP follows from the moment
// balance about the plate surface, offset by the plate thickness dz. A
// balance board reports the load on each corner cell; COP is the
// load-weighted position of the four corners. Some boards also publish a
// firmware-fused displacement channel that is used as-is.
//
// Every input channel is passed through a zero guard before any division.
// HoldLastValue replaces zero samples with the nearest preceding non-zero
// sample (or the following one at the start of the series). ReplaceWithOne
// is the legacy placeholder, kept for reproducing older results: it biases
// every zero sample toward 1 in device units.
package cop
