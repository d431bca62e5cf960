// Package conditioning prepares COP series for feature extraction.
//
// Each device goes through the same fixed sequence: resample onto the
// analysis rate, low-pass filter without phase shift, trim the start-up
// and tail transients (shifting the force plate window to line it up
// with the balance board clock), then detrend. Detrending runs last so
// the trimmed-away filter edges cannot bias the fitted trend.
package conditioning
