// Package boxcar implements the spatiotemporal median filter for scanning
// radar sweep sequences. For every range cell of every beam in the center of
// a three-sweep window it assembles a 3x3x3 neighborhood over (time, beam
// offset, gate offset), applies an integer weight kernel, estimates velocity,
// spectral width and power as weighted medians via integer-weight
// replication, and re-derives the ground/ionospheric scatter classification
// three independent ways: the legacy empirical velocity/width rule, a
// weighted-proportion threshold over the neighborhood flags, and a
// Beta-distribution maximum-likelihood probabilistic classifier.
//
// Range cells whose neighborhood is too sparse (present weight below a
// configurable fraction of total weight) are dropped rather than estimated.
// A Runner slides the window across a full sweep sequence on a bounded
// worker pool, one independent window per task.
package boxcar
