// Package coordinate implements the coordinate-descent dual solver of
// spec §4.1: steepest-violator selection, a clipped one-dimensional Newton
// update, incremental gradient maintenance, and active-set shrinking with
// reconstruction on unshrink.
package coordinate

import "fmt"

// Options carries the tunable thresholds of spec §4.1.
type Options struct {
	CacheSize           int
	ConstraintThreshold float64 // ε_c, support-vector cutoff
	GradientThreshold   float64 // ε_g, KKT slack
	ShrinkingPeriod     int
	UseShrinking        bool
	MaxIterations       int
}

// DefaultOptions returns the thresholds named in spec §4.1.
func DefaultOptions() Options {
	return Options{
		CacheSize:           1024,
		ConstraintThreshold: 1e-5,
		GradientThreshold:   2e-3,
		ShrinkingPeriod:     1300,
		UseShrinking:        true,
		MaxIterations:       400000,
	}
}

// Validate reports the first malformed option, per spec §7's
// "invalid option ranges" precondition.
func (o Options) Validate() error {
	if o.CacheSize <= 0 {
		return fmt.Errorf("%w: cacheSize must be positive, got %d", ErrInvalidOption, o.CacheSize)
	}
	if o.ConstraintThreshold <= 0 {
		return fmt.Errorf("%w: constraintThreshold must be positive, got %g", ErrInvalidOption, o.ConstraintThreshold)
	}
	if o.GradientThreshold <= 0 {
		return fmt.Errorf("%w: gradientThreshold must be positive, got %g", ErrInvalidOption, o.GradientThreshold)
	}
	if o.ShrinkingPeriod <= 0 {
		return fmt.Errorf("%w: shrinkingPeriod must be positive, got %d", ErrInvalidOption, o.ShrinkingPeriod)
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("%w: maxIterations must be positive, got %d", ErrInvalidOption, o.MaxIterations)
	}
	return nil
}
