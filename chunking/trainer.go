package chunking

import (
	"fmt"
	"sort"

	"github.com/grammophone/gosvm/innersolver"
	"github.com/grammophone/gosvm/rowcache"
)

// RowSource is the slice of the Hessian row cache contract (spec §4.3)
// this trainer consumes: a cached row, a memoised diagonal, and the
// prefetched working-set operators behind ActiveSubtensors.
// rowcache.Cache[T] satisfies this for any item type T, since
// ActiveSubtensors's signature doesn't depend on T.
type RowSource interface {
	Row(i int) []float32
	Diagonal() []float64
	ActiveSubtensors(b, n []int) *rowcache.Subtensors
}

// InnerSolver is the constrained-minimisation entry point the chunking
// trainer delegates each subproblem to (spec §4.4): either
// innersolver.LineSearch or innersolver.TruncatedNewton.
type InnerSolver func(qf innersolver.QuadraticForm, box innersolver.Box, lambda0 []float64, opts innersolver.Options) innersolver.Certificate

// Result is the outcome of a Train call.
type Result struct {
	Alpha      []float64
	Iterations int
	Converged  bool
}

// Train runs the chunking solver of spec §4.2 over P dual variables bound
// to cache, delegating each working-set subproblem to solve.
func Train(P int, c float64, cache RowSource, opts Options, solve InnerSolver, innerOpts innersolver.Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if P <= 0 {
		return Result{}, fmt.Errorf("%w: need at least one training pair", ErrInvalidOption)
	}
	if c <= 0 {
		return Result{}, fmt.Errorf("%w: C must be positive, got %g", ErrInvalidOption, c)
	}
	if solve == nil {
		solve = innersolver.LineSearch
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

	// eliminated is never populated by the authoritative algorithm of
	// spec §4.2 — the source's dead shrinking logic that would have
	// populated it is explicitly excluded per §9's open question — so the
	// "clear eliminated and retry" branch below is reachable only in
	// shape, never in practice.
	eliminated := map[int]bool{}
	var previousActive map[int]bool

	outer := 0
	for outer < opts.MaxOuterIterations {
		candidates := collectCandidates(alpha, g, diag, c, opts.GradientThreshold, eliminated)
		b := selectWorkingSet(candidates, g, diag, opts.MaxChunkSize)

		if stop(b, previousActive, eliminated) {
			logger.Printf("optimization finished, #iter = %d\n", outer)
			return Result{Alpha: alpha, Iterations: outer, Converged: true}, nil
		}
		if subsetOf(b, previousActive) && len(eliminated) > 0 {
			eliminated = map[int]bool{}
			outer++
			continue
		}

		bSet := make(map[int]bool, len(b))
		for _, i := range b {
			bSet[i] = true
		}
		n := make([]int, 0, P-len(b))
		for i := 0; i < P; i++ {
			if !bSet[i] {
				n = append(n, i)
			}
		}

		alphaN := make([]float64, len(n))
		for idx, i := range n {
			alphaN[idx] = alpha[i]
		}

		sub := cache.ActiveSubtensors(b, n)
		gc := sub.QBN(alphaN)
		for idx := range gc {
			gc[idx] -= 1
		}

		qf := innersolver.QuadraticForm{
			N:      len(b),
			Apply:  sub.QBB,
			Diag:   sub.DiagBB(),
			Linear: gc,
		}
		box := innersolver.Box{N: len(b), C: c}

		lambda0 := make([]float64, len(b))
		for idx := range lambda0 {
			lambda0[idx] = c / 2
		}

		cert := solve(qf, box, lambda0, innerOpts)
		logger.Printf("iter %d |B| = %d inner iterations = %d converged = %t\n", outer, len(b), cert.Iterations, cert.Converged)

		deltaLambda := make([]float64, len(b))
		for idx, i := range b {
			deltaLambda[idx] = cert.Optimum[idx] - alpha[i]
		}
		gUpdate := sub.QA(deltaLambda)
		for k := 0; k < P; k++ {
			g[k] += gUpdate[k]
		}
		for idx, i := range b {
			alpha[i] = cert.Optimum[idx]
		}

		previousActive = bSet
		outer++
	}

	logger.Printf("WARNING: reaching max number of outer iterations (%d)\n", opts.MaxOuterIterations)
	return Result{Alpha: alpha, Iterations: outer, Converged: false}, nil
}

// collectCandidates gathers non-eliminated indices that violate the KKT
// tolerance appropriate to their bound status (spec §4.2 step 2.1).
func collectCandidates(alpha, g, diag []float64, c, epsG float64, eliminated map[int]bool) []int {
	var candidates []int
	for i := range alpha {
		if eliminated[i] {
			continue
		}
		ghat := g[i] / diag[i]
		interior := alpha[i] > 0 && alpha[i] < c
		violates := false
		switch {
		case interior:
			violates = ghat < -epsG || ghat > epsG
		case alpha[i] == 0:
			violates = ghat < -epsG
		case alpha[i] == c:
			violates = ghat > epsG
		}
		if violates {
			candidates = append(candidates, i)
		}
	}
	return candidates
}

// selectWorkingSet orders candidates by |gᵢ/Qᵢᵢ| ascending and takes up
// to maxChunkSize of them (spec §4.2 step 2.2).
func selectWorkingSet(candidates []int, g, diag []float64, maxChunkSize int) []int {
	sorted := append([]int(nil), candidates...)
	sort.Slice(sorted, func(a, b int) bool {
		ia, ib := sorted[a], sorted[b]
		return absRatio(g[ia], diag[ia]) < absRatio(g[ib], diag[ib])
	})
	if len(sorted) > maxChunkSize {
		sorted = sorted[:maxChunkSize]
	}
	return sorted
}

func absRatio(g, d float64) float64 {
	r := g / d
	if r < 0 {
		return -r
	}
	return r
}

// stop reports the terminal half of spec §4.2 step 2.3's check: B empty,
// or B a subset of previousActive with eliminated already empty.
func stop(b []int, previousActive map[int]bool, eliminated map[int]bool) bool {
	if len(b) == 0 {
		return true
	}
	return subsetOf(b, previousActive) && len(eliminated) == 0
}

func subsetOf(b []int, set map[int]bool) bool {
	if set == nil {
		return false
	}
	for _, i := range b {
		if !set[i] {
			return false
		}
	}
	return true
}
