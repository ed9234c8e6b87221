// ABOUTME: Nearest-neighbor decimation and requantization pipeline
// ABOUTME: Converts a fixed-format waveform to a negotiated speaker format
// Package decimate converts a fixed-format PCM waveform to a negotiated
// speaker format by nearest-neighbor decimation and right-shift
// requantization.
//
// The conversion is deliberately not a bandlimited resampler: the output
// rate must divide into the source rate (step = srcRate / dstRate,
// integer-truncated) and each output sample is a single source sample
// shifted down to the output bit depth. This keeps the pipeline sample-exact
// and cheap, at the cost of aliasing, which is acceptable for the bridge's
// notification waveform.
//
// A Session streams the waveform in fixed-duration chunks and wraps back to
// the start when the source is exhausted, reporting the wrap so the caller
// can insert an audible silence gap between passes.
package decimate
