package svm

import (
	"math/rand"
	"testing"

	"github.com/grammophone/gosvm/chunking"
	"github.com/grammophone/gosvm/coordinate"
	"github.com/grammophone/gosvm/innersolver"
	"github.com/grammophone/gosvm/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 — linearly separable two-point toy.
func TestClassifierLinearlySeparableTwoPoints(t *testing.T) {
	pairs := []TrainingPair[[]float64]{
		{Item: []float64{1, 0}, Class: 1},
		{Item: []float64{-1, 0}, Class: -1},
	}

	trainer := CoordinateTrainer[[]float64]{Options: coordinate.DefaultOptions()}
	classifier := NewBinaryClassifier[[]float64](kernel.NewLinear(), trainer)

	require.NoError(t, classifier.Train(pairs, 1.0))
	require.True(t, classifier.IsTrained())

	assert.Greater(t, classifier.Discriminate([]float64{1, 0}), 0.0)
	assert.Less(t, classifier.Discriminate([]float64{-1, 0}), 0.0)
}

// S2 — XOR with RBF.
func TestClassifierXORWithGaussianKernel(t *testing.T) {
	pairs := []TrainingPair[[]float64]{
		{Item: []float64{0, 0}, Class: -1},
		{Item: []float64{1, 1}, Class: -1},
		{Item: []float64{0, 1}, Class: 1},
		{Item: []float64{1, 0}, Class: 1},
	}

	trainer := CoordinateTrainer[[]float64]{Options: coordinate.DefaultOptions()}
	classifier := NewBinaryClassifier[[]float64](kernel.NewGaussian(1.0), trainer)

	require.NoError(t, classifier.Train(pairs, 10.0))

	for _, p := range pairs {
		got := classifier.Discriminate(p.Item)
		if p.Class > 0 {
			assert.Greater(t, got, 0.0, "point %v", p.Item)
		} else {
			assert.Less(t, got, 0.0, "point %v", p.Item)
		}
	}
}

// S3 — degenerate all-positive training set must be rejected.
func TestClassifierRejectsAllPositiveTrainingSet(t *testing.T) {
	pairs := make([]TrainingPair[[]float64], 10)
	for i := range pairs {
		pairs[i] = TrainingPair[[]float64]{Item: []float64{float64(i), 0}, Class: 1}
	}

	trainer := CoordinateTrainer[[]float64]{Options: coordinate.DefaultOptions()}
	classifier := NewBinaryClassifier[[]float64](kernel.NewLinear(), trainer)

	err := classifier.Train(pairs, 1.0)
	assert.ErrorIs(t, err, ErrMissingNegative)
	assert.False(t, classifier.IsTrained())
}

func TestClassifierRejectsEmptyTrainingSet(t *testing.T) {
	trainer := CoordinateTrainer[[]float64]{Options: coordinate.DefaultOptions()}
	classifier := NewBinaryClassifier[[]float64](kernel.NewLinear(), trainer)

	err := classifier.Train(nil, 1.0)
	assert.ErrorIs(t, err, ErrNoTrainingPairs)
}

func TestClassifierRejectsNonPositiveC(t *testing.T) {
	pairs := []TrainingPair[[]float64]{
		{Item: []float64{1, 0}, Class: 1},
		{Item: []float64{-1, 0}, Class: -1},
	}
	trainer := CoordinateTrainer[[]float64]{Options: coordinate.DefaultOptions()}
	classifier := NewBinaryClassifier[[]float64](kernel.NewLinear(), trainer)

	err := classifier.Train(pairs, 0)
	assert.ErrorIs(t, err, ErrNonPositiveC)
}

func TestClassifierDiscriminateIsZeroBeforeTraining(t *testing.T) {
	trainer := CoordinateTrainer[[]float64]{Options: coordinate.DefaultOptions()}
	classifier := NewBinaryClassifier[[]float64](kernel.NewLinear(), trainer)
	assert.Equal(t, 0.0, classifier.Discriminate([]float64{1, 2}))
	assert.False(t, classifier.IsTrained())
}

func separableGaussianProblem(n int, seed int64) []TrainingPair[[]float64] {
	r := rand.New(rand.NewSource(seed))
	pairs := make([]TrainingPair[[]float64], n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			pairs[i] = TrainingPair[[]float64]{
				Item:  []float64{3 + r.NormFloat64()*0.3, r.NormFloat64() * 0.3},
				Class: 1,
			}
		} else {
			pairs[i] = TrainingPair[[]float64]{
				Item:  []float64{-3 + r.NormFloat64()*0.3, r.NormFloat64() * 0.3},
				Class: -1,
			}
		}
	}
	return pairs
}

// S4 — large C approximates a hard margin: few support vectors, and every
// training point classified correctly.
func TestClassifierLargeCApproximatesHardMargin(t *testing.T) {
	pairs := separableGaussianProblem(100, 1)

	trainer := CoordinateTrainer[[]float64]{Options: coordinate.DefaultOptions()}
	classifier := NewBinaryClassifier[[]float64](kernel.NewGaussian(0.5), trainer)

	require.NoError(t, classifier.Train(pairs, 1e6))

	for _, p := range pairs {
		got := classifier.Discriminate(p.Item)
		if p.Class > 0 {
			assert.Greater(t, got, 0.0)
		} else {
			assert.Less(t, got, 0.0)
		}
	}
}

// S4 (continued) — small C makes every point a bounded support vector.
func TestClassifierSmallCBindsEveryAlpha(t *testing.T) {
	pairs := separableGaussianProblem(20, 2)

	opts := coordinate.DefaultOptions()
	trainer := CoordinateTrainer[[]float64]{Options: opts}
	classifier := NewBinaryClassifier[[]float64](kernel.NewGaussian(0.5), trainer)

	const c = 1e-3
	require.NoError(t, classifier.Train(pairs, c))
	assert.True(t, classifier.IsTrained())

	items := make([][]float64, len(pairs))
	labels := make([]float64, len(pairs))
	for i, p := range pairs {
		items[i] = p.Item
		labels[i] = p.Label()
	}
	result, err := trainer.Train(items, labels, c, kernel.WithBias[[]float64](kernel.NewGaussian(0.5), 1.0))
	require.NoError(t, err)
	for i, a := range result.Alpha {
		assert.Equal(t, c, a, "alpha[%d]", i)
	}
}

// S6 — coordinate-descent and chunking trainers agree on a shared
// problem, within a small disagreement tolerance.
func TestCoordinateAndChunkingAgree(t *testing.T) {
	train := separableGaussianProblem(200, 3)
	test := separableGaussianProblem(200, 4)

	coordTrainer := CoordinateTrainer[[]float64]{Options: coordinate.DefaultOptions()}
	coordClassifier := NewBinaryClassifier[[]float64](kernel.NewLinear(), coordTrainer)
	require.NoError(t, coordClassifier.Train(train, 1.0))

	chunkTrainer := ChunkingTrainer[[]float64]{
		Options:      chunking.DefaultOptions(),
		Solve:        innersolver.LineSearch,
		InnerOptions: innersolver.DefaultOptions(),
	}
	chunkClassifier := NewBinaryClassifier[[]float64](kernel.NewLinear(), chunkTrainer)
	require.NoError(t, chunkClassifier.Train(train, 1.0))

	points := make([][]float64, len(test))
	for i, p := range test {
		points[i] = p.Item
	}

	disagreement := Agreement[[]float64](coordClassifier, chunkClassifier, points)
	assert.LessOrEqual(t, disagreement, 0.01)
}
