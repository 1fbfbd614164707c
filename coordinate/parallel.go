package coordinate

import (
	"fmt"
	"sync"

	"github.com/tevino/abool"

	"github.com/grammophone/gosvm/partition"
)

// TrainParallel is the partitioned variant of Train (spec §4.1 "Parallel
// variant"): the violator-selection and gradient-update loops over the
// active set are split into contiguous ranges across workers, each
// computing a local (ΔG_max, argmax) that is merged in worker order after
// the join; the shrinking-compensation loop and the per-row loops of the
// unshrink reconstruction are partitioned the same way over [0, P). The
// outer select→update→shrink sequence stays strictly sequential, as in
// the serial trainer (spec §5).
func TrainParallel(P int, c float64, cache RowSource, opts Options, workers int) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if P <= 0 {
		return Result{}, ErrInvalidOption
	}
	if c <= 0 {
		return Result{}, ErrInvalidOption
	}
	if workers <= 1 {
		return Train(P, c, cache, opts)
	}

	diag := cache.Diagonal()
	for i, qii := range diag {
		if qii <= 0 {
			return Result{}, fmt.Errorf("%w: index %d, Q_ii = %g", ErrDegenerateKernel, i, qii)
		}
	}

	alpha := make([]float64, P)
	g := make([]float64, P)
	for i := range g {
		g[i] = -1
	}
	gs := make([]float64, P)

	active := make([]int, P)
	for i := range active {
		active[i] = i
	}
	activeSize := P

	period := 2
	sinceShrink := 0
	iter := 0

	for iter < opts.MaxIterations {
		bestPos, found := selectViolatorParallel(active, activeSize, alpha, g, diag, c, opts.GradientThreshold, workers)

		if !found {
			if activeSize == P {
				return Result{Alpha: alpha, Iterations: iter, Converged: true}, nil
			}
			g = reconstructGradientParallel(active, activeSize, alpha, gs, cache, P, c, workers)
			for i := 0; i < P; i++ {
				active[i] = i
			}
			activeSize = P
			for i := range gs {
				gs[i] = 0
			}
			period = 2
			sinceShrink = 0
			iter++
			continue
		}

		i := active[bestPos]
		row := cache.Row(i)
		qii := diag[i]

		alphaOld := alpha[i]
		newAlpha := alphaOld - g[i]/qii
		if newAlpha < 0 {
			newAlpha = 0
		} else if newAlpha > c {
			newAlpha = c
		}
		delta := newAlpha - alphaOld
		alpha[i] = newAlpha

		if delta != 0 {
			updateGradientParallel(active, activeSize, g, row, delta, workers)
		}

		if opts.UseShrinking {
			if alphaOld == c && newAlpha < c {
				applyShrinkingCompensationParallel(gs, row, -c, workers)
			} else if alphaOld < c && newAlpha == c {
				applyShrinkingCompensationParallel(gs, row, c, workers)
			}
		}

		iter++
		sinceShrink++
		if period < opts.ShrinkingPeriod {
			period += 4
			if period > opts.ShrinkingPeriod {
				period = opts.ShrinkingPeriod
			}
		}

		if opts.UseShrinking && sinceShrink >= period {
			sinceShrink = 0
			active, activeSize = shrinkActiveSet(active, activeSize, alpha, g, c)
		}
	}

	return Result{Alpha: alpha, Iterations: iter, Converged: false}, nil
}

type localBest struct {
	pos     int
	deltaG  float64
	present bool
}

// selectViolatorParallel partitions [0, activeSize) across workers; each
// computes its own steepest violator into its own result slot, then the
// slots are merged in worker order after the join. foundAny is an abool
// flag workers set the
// instant they see a violator, letting the merge section short-circuit
// its "did anybody find one" check without scanning every local result —
// the partitioned analogue of liblinear/tron.go's reachBoundary signal.
func selectViolatorParallel(active []int, activeSize int, alpha, g, diag []float64, c, epsG float64, workers int) (int, bool) {
	ranges := partition.StaticRangePartitioner(0, activeSize, workers)
	results := make([]localBest, len(ranges))
	foundAny := abool.New()

	var wg sync.WaitGroup
	for w, r := range ranges {
		wg.Add(1)
		go func(w int, r partition.Range) {
			defer wg.Done()
			pos, deltaG := selectViolator(active[r.Start:r.End], r.Len(), alpha, g, diag, c, epsG)
			if pos == -1 {
				return
			}
			foundAny.Set()
			results[w] = localBest{pos: r.Start + pos, deltaG: deltaG, present: true}
		}(w, r)
	}
	wg.Wait()

	if !foundAny.IsSet() {
		return -1, false
	}

	bestPos := -1
	bestDeltaG := -1.0
	for _, lb := range results {
		if lb.present && lb.deltaG > bestDeltaG {
			bestDeltaG = lb.deltaG
			bestPos = lb.pos
		}
	}

	return bestPos, bestPos != -1
}

func updateGradientParallel(active []int, activeSize int, g []float64, row []float32, delta float64, workers int) {
	ranges := partition.StaticRangePartitioner(0, activeSize, workers)
	var wg sync.WaitGroup
	for _, r := range ranges {
		wg.Add(1)
		go func(r partition.Range) {
			defer wg.Done()
			for s := r.Start; s < r.End; s++ {
				j := active[s]
				g[j] += delta * float64(row[j])
			}
		}(r)
	}
	wg.Wait()
}

func applyShrinkingCompensationParallel(gs []float64, row []float32, signedC float64, workers int) {
	ranges := partition.StaticRangePartitioner(0, len(gs), workers)
	var wg sync.WaitGroup
	for _, r := range ranges {
		wg.Add(1)
		go func(r partition.Range) {
			defer wg.Done()
			for j := r.Start; j < r.End; j++ {
				gs[j] += signedC * float64(row[j])
			}
		}(r)
	}
	wg.Wait()
}

func reconstructGradientParallel(active []int, activeSize int, alpha, gs []float64, cache RowSource, P int, c float64, workers int) []float64 {
	g := make([]float64, P)
	for i := range g {
		g[i] = -1
	}

	for s := 0; s < activeSize; s++ {
		j := active[s]
		if alpha[j] > 0 && alpha[j] < c {
			row := cache.Row(j)
			aj := alpha[j]
			ranges := partition.StaticRangePartitioner(0, P, workers)
			var wg sync.WaitGroup
			for _, r := range ranges {
				wg.Add(1)
				go func(r partition.Range) {
					defer wg.Done()
					for k := r.Start; k < r.End; k++ {
						g[k] += aj * float64(row[k])
					}
				}(r)
			}
			wg.Wait()
		}
	}
	for k := 0; k < P; k++ {
		g[k] += gs[k]
	}
	return g
}
