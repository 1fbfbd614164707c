// Package svm binds a trainer (coordinate-descent or chunking) to a
// kernel and exposes the public classifier surface of spec §6.4.
package svm

// TrainingPair is one labeled training example (spec §3): the label is
// canonically ±1.0 wherever it participates in arithmetic.
type TrainingPair[T any] struct {
	Item  T
	Class float64
}

// Label returns ±1.0 regardless of how Class was set (e.g. 0/1 encoding).
func (p TrainingPair[T]) Label() float64 {
	if p.Class > 0 {
		return 1
	}
	return -1
}
