package svm

import (
	"errors"
	"fmt"

	"github.com/grammophone/gosvm/chunking"
	"github.com/grammophone/gosvm/coordinate"
	"github.com/grammophone/gosvm/innersolver"
	"github.com/grammophone/gosvm/kernel"
	"github.com/grammophone/gosvm/rowcache"
)

// Result is a trainer-agnostic view of a dual solve: the optimised α
// vector plus convergence bookkeeping.
type Result struct {
	Alpha      []float64
	Iterations int
	Converged  bool
}

// Trainer is the capability BinaryClassifier.Train delegates to — either
// the coordinate-descent solver or the chunking solver, bound to a
// concrete item type.
type Trainer[T any] interface {
	Train(items []T, labels []float64, c float64, k kernel.Kernel[T]) (Result, error)
	// ConstraintThreshold is ε_c — the support-vector cutoff of spec §4.1
	// step 3 / §4.2 step 3, used by the classifier façade to decide which
	// dual variables become kernel components.
	ConstraintThreshold() float64
}

// CoordinateTrainer adapts the coordinate package's solver to Trainer.
// Workers <= 1 selects the serial variant; Workers > 1 partitions
// selection and gradient maintenance across that many goroutines and also
// sizes the static-parallel row creator.
type CoordinateTrainer[T any] struct {
	Options coordinate.Options
	Workers int
}

func (t CoordinateTrainer[T]) ConstraintThreshold() float64 { return t.Options.ConstraintThreshold }

func (t CoordinateTrainer[T]) Train(items []T, labels []float64, c float64, k kernel.Kernel[T]) (Result, error) {
	p := len(items)
	var creator rowcache.RowCreator[T]
	if t.Workers > 1 {
		creator = rowcache.NewStaticParallel[T](items, labels, k, t.Workers)
	} else {
		creator = rowcache.NewSerial[T](items, labels, k)
	}
	cache := rowcache.NewSequential[T](p, creator, t.Options.CacheSize)

	var (
		res coordinate.Result
		err error
	)
	if t.Workers > 1 {
		res, err = coordinate.TrainParallel(p, c, cache, t.Options, t.Workers)
	} else {
		res, err = coordinate.Train(p, c, cache, t.Options)
	}
	if errors.Is(err, coordinate.ErrDegenerateKernel) {
		return Result{}, fmt.Errorf("%w: %v", ErrDegenerateKernel, err)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Alpha: res.Alpha, Iterations: res.Iterations, Converged: res.Converged}, nil
}

// ChunkingTrainer adapts the chunking package's solver to Trainer.
// RowCreatorWorkers, when > 1, selects the static-parallel row creator
// feeding the thread-safe row cache the chunking trainer's concurrent
// subtensor prefetch requires.
type ChunkingTrainer[T any] struct {
	Options           chunking.Options
	Solve             chunking.InnerSolver
	InnerOptions      innersolver.Options
	RowCreatorWorkers int
}

func (t ChunkingTrainer[T]) ConstraintThreshold() float64 { return t.Options.ConstraintThreshold }

func (t ChunkingTrainer[T]) Train(items []T, labels []float64, c float64, k kernel.Kernel[T]) (Result, error) {
	p := len(items)
	var creator rowcache.RowCreator[T]
	if t.RowCreatorWorkers > 1 {
		creator = rowcache.NewStaticParallel[T](items, labels, k, t.RowCreatorWorkers)
	} else {
		creator = rowcache.NewSerial[T](items, labels, k)
	}
	cache := rowcache.NewThreadSafe[T](p, creator, t.Options.CacheSize)

	res, err := chunking.Train(p, c, cache, t.Options, t.Solve, t.InnerOptions)
	if errors.Is(err, chunking.ErrDegenerateKernel) {
		return Result{}, fmt.Errorf("%w: %v", ErrDegenerateKernel, err)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Alpha: res.Alpha, Iterations: res.Iterations, Converged: res.Converged}, nil
}
