package svm

import "errors"

// Sentinel errors for the argument-violation error kind of spec §7.
// Precondition violations halt training immediately rather than being
// reported through a status field.
var (
	ErrNoTrainingPairs  = errors.New("svm: training set is empty")
	ErrMissingPositive  = errors.New("svm: training set has no positive example")
	ErrMissingNegative  = errors.New("svm: training set has no negative example")
	ErrNonPositiveC     = errors.New("svm: C must be positive")
	ErrNotTrained       = errors.New("svm: classifier has not been trained")
	// ErrDegenerateKernel wraps the coordinate/chunking package's own
	// degenerate-diagonal sentinel at the façade boundary (see trainer.go),
	// so callers only need to check one error regardless of which trainer
	// produced it.
	ErrDegenerateKernel = errors.New("svm: kernel produced a non-positive diagonal entry")
)
