package innersolver

import "math"

// TruncatedNewton solves the chunking subproblem's log-barrier Lagrangian
// by, at each barrier level t, approximately solving the Newton system
// (t·H_L + H_φ)d = -(t·∇L + ∇φ) with preconditioned CG truncated at
// opts.MaxCGIter iterations, then stepping along d with a backtracking
// line search that stays strictly inside (0,C)^n. The barrier parameter t
// is driven up across outer sweeps until the duality gap certificate falls
// below n/1e8 (spec §4.2's "Truncated-Newton" inner solver, §4.4's
// truncated_newton entry point).
//
// Grounded on liblinear/tron.go's Tron.trcg: the same preconditioned CG
// loop over a matrix-vector product (here t·Q + diag(H_φ) instead of the
// teacher's Hessian-vector callback hv), without the teacher's trust-region
// radius bookkeeping, since spec §4.2 drives this by barrier level rather
// than by trust region.
func TruncatedNewton(qf QuadraticForm, box Box, lambda0 []float64, opts Options) Certificate {
	n := qf.N
	lambda := make([]float64, n)
	copy(lambda, lambda0)

	t := opts.InitialT
	totalIter := 0

	for outer := 0; outer < opts.MaxOuterIter; outer++ {
		iters := newtonLevel(qf, box, lambda, t, opts)
		totalIter += iters

		gap := DualityGap(t, n)
		if gap <= float64(n)/1e8 {
			return Certificate{Optimum: lambda, Iterations: totalIter, Converged: true}
		}
		t *= opts.MuFactor
	}
	return Certificate{Optimum: lambda, Iterations: totalIter, Converged: false}
}

// newtonLevel runs inexact-Newton iterations in place over lambda at fixed
// barrier level t, until ‖M·g‖/n < ε, and returns the number of CG
// iterations spent across all Newton steps at this level.
func newtonLevel(qf QuadraticForm, box Box, lambda []float64, t float64, opts Options) int {
	n := qf.N
	grad := make([]float64, n)
	barrierGrad := make([]float64, n)
	hPhiDiag := make([]float64, n)

	totalCG := 0
	const maxNewtonSteps = 30
	for step := 0; step < maxNewtonSteps; step++ {
		gl := qf.Gradient(lambda)
		box.barrierGradient(lambda, barrierGrad)
		for i := 0; i < n; i++ {
			grad[i] = t*gl[i] + barrierGrad[i]
		}

		m := Preconditioner(t, qf.Diag, lambda, box)
		mg := 0.0
		for i := 0; i < n; i++ {
			mg += m[i] * grad[i] * m[i] * grad[i]
		}
		if math.Sqrt(mg)/float64(n) < opts.Tolerance {
			break
		}

		box.barrierHessianDiag(lambda, hPhiDiag)
		applyA := func(v []float64) []float64 {
			qv := qf.Apply(v)
			out := make([]float64, n)
			for i := 0; i < n; i++ {
				out[i] = t*qv[i] + hPhiDiag[i]*v[i]
			}
			return out
		}

		dir, cgIter := preconditionedCG(applyA, grad, m, opts.MaxCGIter)
		totalCG += cgIter
		for i := 0; i < n; i++ {
			dir[i] = -dir[i]
		}

		s := backtrack(qf, box, lambda, dir, t)
		if s == 0 {
			break
		}
		for i := 0; i < n; i++ {
			lambda[i] += s * dir[i]
		}
	}
	return totalCG
}

// preconditionedCG solves Ax = b approximately with at most maxIter
// Jacobi-preconditioned conjugate-gradient iterations, returning x and the
// iteration count. b here is the gradient; the caller negates the result
// to get a descent direction.
func preconditionedCG(apply func(v []float64) []float64, b, m []float64, maxIter int) ([]float64, int) {
	n := len(b)
	x := make([]float64, n)
	r := make([]float64, n)
	copy(r, b)
	z := make([]float64, n)
	for i := range z {
		z[i] = m[i] * r[i]
	}
	p := make([]float64, n)
	copy(p, z)

	rz := dot(r, z)
	if maxIter <= 0 {
		maxIter = n
	}

	iter := 0
	for iter = 0; iter < maxIter; iter++ {
		if euclideanNorm(r) < 1e-12 {
			break
		}
		ap := apply(p)
		pAp := dot(p, ap)
		if pAp <= 0 {
			break
		}
		alpha := rz / pAp
		daxpy(alpha, p, x)
		daxpy(-alpha, ap, r)
		for i := 0; i < n; i++ {
			z[i] = m[i] * r[i]
		}
		rzNew := dot(r, z)
		beta := rzNew / rz
		scaleVector(beta, p)
		daxpy(1.0, z, p)
		rz = rzNew
	}
	return x, iter
}
