// Package chunking implements the working-set chunking trainer of spec
// §4.2: KKT-violation candidate collection, subproblem construction over
// the active/inactive split, and delegation to an interior-point inner
// solver (package innersolver).
package chunking

import "fmt"

// Options carries the tunable thresholds of spec §4.2. MaxOuterIterations
// is not named by the contract but bounds the outer working-set loop the
// same way coordinate.Options.MaxIterations bounds §4.1's, since
// nothing in §4.2 otherwise rules out non-termination on a pathological
// problem.
type Options struct {
	MaxChunkSize        int
	ConstraintThreshold float64
	GradientThreshold   float64
	CacheSize           int
	MaxOuterIterations  int
}

// DefaultOptions returns the thresholds named in spec §4.2.
func DefaultOptions() Options {
	return Options{
		MaxChunkSize:        1000,
		ConstraintThreshold: 1e-3,
		GradientThreshold:   1e-3,
		CacheSize:           2048,
		MaxOuterIterations:  10000,
	}
}

// Validate reports the first malformed option.
func (o Options) Validate() error {
	if o.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: maxChunkSize must be positive, got %d", ErrInvalidOption, o.MaxChunkSize)
	}
	if o.ConstraintThreshold <= 0 {
		return fmt.Errorf("%w: constraintThreshold must be positive, got %g", ErrInvalidOption, o.ConstraintThreshold)
	}
	if o.GradientThreshold <= 0 {
		return fmt.Errorf("%w: gradientThreshold must be positive, got %g", ErrInvalidOption, o.GradientThreshold)
	}
	if o.CacheSize <= 0 {
		return fmt.Errorf("%w: cacheSize must be positive, got %d", ErrInvalidOption, o.CacheSize)
	}
	if o.MaxOuterIterations <= 0 {
		return fmt.Errorf("%w: maxOuterIterations must be positive, got %d", ErrInvalidOption, o.MaxOuterIterations)
	}
	return nil
}
