package innersolver

import "math"

// LineSearch solves the chunking subproblem's log-barrier Lagrangian by
// preconditioned nonlinear conjugate-gradient descent with a backtracking
// step chosen along the feasible direction, staying strictly inside
// (0,C)^n, driving the barrier parameter up across outer sweeps until the
// duality gap certificate falls below n/1e8 (spec §4.2's "Line-search"
// inner solver, §4.4's line_search entry point).
//
// Grounded on liblinear/tron.go's Tron.tron/Tron.trcg (the teacher's only
// constrained/trust-region CG solver) restructured per spec §9's design
// note into a standalone function rather than the teacher's inheritance-shaped
// single Function-bound Tron.
func LineSearch(qf QuadraticForm, box Box, lambda0 []float64, opts Options) Certificate {
	n := qf.N
	lambda := make([]float64, n)
	copy(lambda, lambda0)

	t := opts.InitialT
	totalIter := 0

	for outer := 0; outer < opts.MaxOuterIter; outer++ {
		iters := lineSearchInner(qf, box, lambda, t, opts)
		totalIter += iters

		gap := DualityGap(t, n)
		if gap <= float64(n)/1e8 {
			return Certificate{Optimum: lambda, Iterations: totalIter, Converged: true}
		}
		t *= opts.MuFactor
	}
	return Certificate{Optimum: lambda, Iterations: totalIter, Converged: false}
}

// lineSearchInner minimises f_t(λ) = t·L(λ) + φ(λ) in place over lambda by
// preconditioned nonlinear CG with Polak-Ribière betas (restarting to
// steepest descent whenever beta goes negative, the standard
// globalization for PR+), returning the number of CG iterations taken.
func lineSearchInner(qf QuadraticForm, box Box, lambda []float64, t float64, opts Options) int {
	n := qf.N
	grad := make([]float64, n)
	prevGrad := make([]float64, n)
	dir := make([]float64, n)
	barrierGrad := make([]float64, n)

	gradAt := func(l []float64) {
		gl := qf.Gradient(l)
		box.barrierGradient(l, barrierGrad)
		for i := 0; i < n; i++ {
			grad[i] = t*gl[i] + barrierGrad[i]
		}
	}

	gradAt(lambda)
	m := Preconditioner(t, qf.Diag, lambda, box)
	for i := 0; i < n; i++ {
		dir[i] = -m[i] * grad[i]
	}

	iter := 0
	for iter = 0; iter < opts.MaxCGIter; iter++ {
		mg := 0.0
		for i := 0; i < n; i++ {
			mg += m[i] * grad[i] * m[i] * grad[i]
		}
		if math.Sqrt(mg)/float64(n) < opts.Tolerance {
			break
		}

		step := backtrack(qf, box, lambda, dir, t)
		if step == 0 {
			break
		}

		deltaNorm := 0.0
		for i := 0; i < n; i++ {
			delta := step * dir[i]
			lambda[i] += delta
			deltaNorm += delta * delta
		}
		if math.Sqrt(deltaNorm)/float64(n) < opts.Tolerance {
			iter++
			break
		}

		copy(prevGrad, grad)
		gradAt(lambda)
		m = Preconditioner(t, qf.Diag, lambda, box)

		var num, den float64
		for i := 0; i < n; i++ {
			num += grad[i] * (grad[i] - prevGrad[i])
			den += prevGrad[i] * prevGrad[i]
		}
		beta := 0.0
		if den > 0 {
			beta = num / den
			if beta < 0 {
				beta = 0
			}
		}
		for i := 0; i < n; i++ {
			dir[i] = -m[i]*grad[i] + beta*dir[i]
		}
	}
	return iter
}

// backtrack halves the step from 1 until f_t decreases (Armijo-lite
// sufficient-decrease) and λ+step·dir stays strictly inside (0,C)^n.
func backtrack(qf QuadraticForm, box Box, lambda, dir []float64, t float64) float64 {
	n := len(lambda)
	fCur := t*qf.Value(lambda) + box.barrierValue(lambda)

	trial := make([]float64, n)
	step := 1.0
	for iter := 0; iter < 60; iter++ {
		inDomain := true
		for i := 0; i < n; i++ {
			trial[i] = lambda[i] + step*dir[i]
			if trial[i] <= 0 || trial[i] >= box.C {
				inDomain = false
				break
			}
		}
		if inDomain {
			fTrial := t*qf.Value(trial) + box.barrierValue(trial)
			if fTrial < fCur {
				return step
			}
		}
		step *= 0.5
	}
	return 0
}
