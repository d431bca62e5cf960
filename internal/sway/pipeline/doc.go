// Package pipeline wires the acquisition reader, COP estimator,
// conditioner and feature engines into per-trial processing and a
// concurrent batch runner.
package pipeline
