// Package dsp provides the digital signal processing building blocks used
// by the resampling, conditioning and spectral stages: window functions,
// windowed-sinc FIR design, IIR low-pass design in second-order sections,
// zero-phase filtering and cumulative integration.
//
// IIR filters are designed the classic way: an analog prototype is
// frequency-warped and mapped to the z-plane with the bilinear transform,
// then split into biquads. Filtering is done section by section in direct
// form II transposed, which keeps high-order, low-cutoff designs such as the
// order-8 decimation filter numerically well behaved.
package dsp
