// Package kernel defines the façade the training core consumes from a
// kernel function, and a couple of reference implementations used by tests
// and the demo CLI. The core never depends on a specific kernel; it only
// ever calls through the Kernel[T] interface below.
package kernel

// Kernel is the narrow contract the training core consumes (spec §6.1). A
// Kernel evaluates a bivariate similarity function K(x, y), and separately
// accumulates a weighted sum of "components" — (weight, item) pairs added
// after training completes — so that ComputeSum can serve as the trained
// discriminant without the caller maintaining its own support-vector list.
type Kernel[T any] interface {
	// Compute returns K(x, y).
	Compute(x, y T) float64

	// ComputeSum returns Σ_k w_k·K(c_k, x) + bias over the accumulated
	// components (w_k, c_k), plus whatever additive bias ForkNew/WithBias
	// folded in.
	ComputeSum(x T) float64

	// AddComponent appends (weight, x) to the accumulated component list.
	AddComponent(weight float64, x T)

	// ClearComponents empties the accumulated component list.
	ClearComponents()

	// HasComponents reports whether any component has been added.
	HasComponents() bool

	// ForkNew returns an independent evaluator sharing no mutable state
	// with the receiver, suitable for use on another goroutine. A fork
	// inherits the receiver's parameters (and bias) but starts with an
	// empty component list.
	ForkNew() Kernel[T]
}

// biased wraps a Kernel with a constant additive shift folded into
// ComputeSum, per spec §6.1's "kernel + bias" operation. It does not alter
// Compute; ComputeSum adds the shift once, unweighted by the components.
// The row creators evaluate each Q entry through a fork's ComputeSum with
// a single unit-weight component, so every materialised row entry carries
// the shift: Q_ij = y_i·y_j·(K(x_i, x_j) + bias).
type biased[T any] struct {
	inner Kernel[T]
	bias  float64
}

// WithBias returns a Kernel identical to k except that ComputeSum adds a
// constant bias. The classifier constructor uses this with bias = 1.0 to
// absorb the intercept, since the training core never solves for b via an
// equality constraint (spec §1 non-goals).
func WithBias[T any](k Kernel[T], bias float64) Kernel[T] {
	return &biased[T]{inner: k, bias: bias}
}

func (b *biased[T]) Compute(x, y T) float64 {
	return b.inner.Compute(x, y)
}

func (b *biased[T]) ComputeSum(x T) float64 {
	return b.inner.ComputeSum(x) + b.bias
}

func (b *biased[T]) AddComponent(weight float64, x T) {
	b.inner.AddComponent(weight, x)
}

func (b *biased[T]) ClearComponents() {
	b.inner.ClearComponents()
}

func (b *biased[T]) HasComponents() bool {
	return b.inner.HasComponents()
}

func (b *biased[T]) ForkNew() Kernel[T] {
	return &biased[T]{inner: b.inner.ForkNew(), bias: b.bias}
}
