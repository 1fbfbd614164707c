package coordinate

import "fmt"

// RowSource is the slice of the Hessian row cache contract (spec §4.3)
// this trainer actually consumes: a cached signed-Gram row by index and a
// memoised diagonal. Both rowcache.Cache[T]'s sequential and thread-safe
// variants satisfy this structurally.
type RowSource interface {
	Row(i int) []float32
	Diagonal() []float64
}

// Result is the outcome of a Train call: the dual variables and whether
// the KKT tolerance was met before MaxIterations was exhausted (spec §7's
// non-convergence error kind, reported rather than raised).
type Result struct {
	Alpha      []float64
	Iterations int
	Converged  bool
}

// Train runs the serial coordinate-descent solver of spec §4.1 over a
// problem of P dual variables bound to a row source whose rows already
// carry the yᵢyⱼ sign (spec §3's Q). No labels are passed: the signed Gram
// structure lives in cache.
func Train(P int, c float64, cache RowSource, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if P <= 0 {
		return Result{}, fmt.Errorf("%w: need at least one training pair", ErrInvalidOption)
	}
	if c <= 0 {
		return Result{}, fmt.Errorf("%w: C must be positive, got %g", ErrInvalidOption, c)
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
		bestPos, _ := selectViolator(active, activeSize, alpha, g, diag, c, opts.GradientThreshold)

		if bestPos == -1 {
			if activeSize == P {
				logger.Printf("optimization finished, #iter = %d\n", iter)
				return Result{Alpha: alpha, Iterations: iter, Converged: true}, nil
			}
			logger.Printf("unshrinking at iter %d, active size %d -> %d\n", iter, activeSize, P)
			g = reconstructGradient(active, activeSize, alpha, gs, cache, P, c)
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
			for s := 0; s < activeSize; s++ {
				j := active[s]
				g[j] += delta * float64(row[j])
			}
		}

		if opts.UseShrinking {
			if alphaOld == c && newAlpha < c {
				for j := 0; j < P; j++ {
					gs[j] -= c * float64(row[j])
				}
			} else if alphaOld < c && newAlpha == c {
				for j := 0; j < P; j++ {
					gs[j] += c * float64(row[j])
				}
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
			before := activeSize
			active, activeSize = shrinkActiveSet(active, activeSize, alpha, g, c)
			if activeSize != before {
				logger.Printf("shrink at iter %d, active size %d -> %d\n", iter, before, activeSize)
			}
		}
	}

	logger.Printf("WARNING: reaching max number of iterations (%d)\n", opts.MaxIterations)
	return Result{Alpha: alpha, Iterations: iter, Converged: false}, nil
}

// selectViolator scans the active set for the steepest KKT-violating
// coordinate and returns its position within active (not its problem
// index) plus its ΔG = gᵢ²/Qᵢᵢ score, or (-1, -1) when none violates.
func selectViolator(active []int, activeSize int, alpha, g, diag []float64, c, epsG float64) (int, float64) {
	bestPos := -1
	bestDeltaG := -1.0
	for s := 0; s < activeSize; s++ {
		i := active[s]
		ghat := g[i] / diag[i]
		isViolator := (alpha[i] < c && ghat < -epsG) || (alpha[i] > 0 && ghat > epsG)
		if !isViolator {
			continue
		}
		deltaG := g[i] * ghat
		if deltaG > bestDeltaG {
			bestDeltaG = deltaG
			bestPos = s
		}
	}
	return bestPos, bestDeltaG
}

// reconstructGradient rebuilds g over the full P coordinates from the
// interior (non-bound) variables still in the active set plus the
// shrinking compensation gs, per spec §4.1 step 2.2's unshrink procedure.
func reconstructGradient(active []int, activeSize int, alpha, gs []float64, cache RowSource, P int, c float64) []float64 {
	g := make([]float64, P)
	for i := range g {
		g[i] = -1
	}
	for s := 0; s < activeSize; s++ {
		j := active[s]
		if alpha[j] > 0 && alpha[j] < c {
			row := cache.Row(j)
			aj := alpha[j]
			for k := 0; k < P; k++ {
				g[k] += aj * float64(row[k])
			}
		}
	}
	for k := 0; k < P; k++ {
		g[k] += gs[k]
	}
	return g
}

// shrinkActiveSet retains only eligible indices — interior variables, or
// bound variables whose gradient still points away from the bound — and
// applies the shrink only when it removes at least 12 indices, per spec
// §4.1 step 2.5's "avoid micro-churn" clause.
func shrinkActiveSet(active []int, activeSize int, alpha, g []float64, c float64) ([]int, int) {
	kept := active[:0:0]
	for s := 0; s < activeSize; s++ {
		i := active[s]
		eligible := (alpha[i] > 0 && alpha[i] < c) ||
			(alpha[i] == 0 && g[i] < 0) ||
			(alpha[i] == c && g[i] > 0)
		if eligible {
			kept = append(kept, i)
		}
	}
	if activeSize-len(kept) < 12 {
		return active, activeSize
	}
	return kept, len(kept)
}
