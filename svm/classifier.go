package svm

import "github.com/grammophone/gosvm/kernel"

// BinaryClassifier is the public classifier surface of spec §6.4: a
// kernel bound to a trainer, exposing Train and Discriminate.
type BinaryClassifier[T any] struct {
	kernel  kernel.Kernel[T]
	trainer Trainer[T]
	trained bool
}

// NewBinaryClassifier wraps k with the +1 additive bias the design
// intentionally uses to absorb the intercept (spec §1's Non-goals, §6.1's
// "kernel + bias" operation) instead of a bias equality constraint. The
// wrapped kernel is used for both training and inference so the same
// bias term that shaped the dual solve reappears in Discriminate.
func NewBinaryClassifier[T any](k kernel.Kernel[T], trainer Trainer[T]) *BinaryClassifier[T] {
	return &BinaryClassifier[T]{
		kernel:  kernel.WithBias(k, 1.0),
		trainer: trainer,
	}
}

// Train clears any prior components and fits the dual variables over
// pairs, requiring at least one positive and one negative example (spec
// §6.4's precondition; spec §7's argument-violation error kind).
func (c *BinaryClassifier[T]) Train(pairs []TrainingPair[T], C float64) error {
	if len(pairs) == 0 {
		return ErrNoTrainingPairs
	}
	if C <= 0 {
		return ErrNonPositiveC
	}

	items := make([]T, len(pairs))
	labels := make([]float64, len(pairs))
	var hasPositive, hasNegative bool
	for i, p := range pairs {
		items[i] = p.Item
		labels[i] = p.Label()
		if labels[i] > 0 {
			hasPositive = true
		} else {
			hasNegative = true
		}
	}
	if !hasPositive {
		return ErrMissingPositive
	}
	if !hasNegative {
		return ErrMissingNegative
	}

	c.kernel.ClearComponents()

	result, err := c.trainer.Train(items, labels, C, c.kernel)
	if err != nil {
		return err
	}

	threshold := c.trainer.ConstraintThreshold()
	for i, a := range result.Alpha {
		if a > threshold {
			c.kernel.AddComponent(a*labels[i], items[i])
		}
	}

	c.trained = true
	return nil
}

// Discriminate returns kernel.ComputeSum(x); its sign is the predicted
// class label, and it is zero before the classifier has been trained.
func (c *BinaryClassifier[T]) Discriminate(x T) float64 {
	if !c.trained {
		return 0
	}
	return c.kernel.ComputeSum(x)
}

// IsTrained reports whether Train has completed successfully at least
// once.
func (c *BinaryClassifier[T]) IsTrained() bool {
	return c.trained
}
