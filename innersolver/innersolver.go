// Package innersolver implements the constrained-minimisation facility the
// chunking trainer consumes through the narrow interface of spec §4.4/§6.3:
// a log-barrier Lagrangian over a box-constrained subproblem, solved either
// by a conjugate-gradient line-search or by a truncated-Newton method.
//
// Following spec §9's design note on function-valued data, the Lagrangian
// is represented as a small struct (QuadraticForm) carrying the working
// set's captured state, with Value and Gradient methods, a Hessian-vector
// product Apply and the Hessian diagonal Diag (for the Jacobi
// preconditioner); the log-barrier is a separate term on Box — the same
// shape as the teacher's Function interface (fun/grad/hv) in function.go.
package innersolver

import "math"

// QuadraticForm is ½λᵀQλ + g_c·λ over λ ∈ (0,C)^n — the chunking
// subproblem's Lagrangian L(λ) before the log-barrier is added (spec §4.2
// step 4). Apply multiplies Q by a vector; Diag holds diag(Q).
type QuadraticForm struct {
	N      int
	Apply  func(v []float64) []float64
	Diag   []float64
	Linear []float64 // g_c
}

// Value returns L(lambda) = ½λᵀQλ + g_c·λ.
func (q QuadraticForm) Value(lambda []float64) float64 {
	qLambda := q.Apply(lambda)
	var quad, lin float64
	for i := range lambda {
		quad += lambda[i] * qLambda[i]
		lin += q.Linear[i] * lambda[i]
	}
	return 0.5*quad + lin
}

// Gradient returns ∇L(lambda) = Qλ + g_c.
func (q QuadraticForm) Gradient(lambda []float64) []float64 {
	g := q.Apply(lambda)
	for i := range g {
		g[i] += q.Linear[i]
	}
	return g
}

// Box is the box domain (0, C)^n the log-barrier is built over.
type Box struct {
	N int
	C float64
}

// barrierValue returns φ(λ) = -Σ[log(λ_i) + log(C-λ_i)].
func (b Box) barrierValue(lambda []float64) float64 {
	var phi float64
	for _, l := range lambda {
		phi -= math.Log(l) + math.Log(b.C-l)
	}
	return phi
}

// barrierGradient returns ∇φ(λ)_i = -1/λ_i + 1/(C-λ_i).
func (b Box) barrierGradient(lambda []float64, out []float64) {
	for i, l := range lambda {
		out[i] = -1/l + 1/(b.C-l)
	}
}

// barrierHessianDiag returns diag(H_φ(λ))_i = 1/λ_i² + 1/(C-λ_i)².
func (b Box) barrierHessianDiag(lambda []float64, out []float64) {
	for i, l := range lambda {
		out[i] = 1/(l*l) + 1/((b.C-l)*(b.C-l))
	}
}

// InDomain reports whether lambda is strictly inside (0,C)^n.
func (b Box) InDomain(lambda []float64) bool {
	for _, l := range lambda {
		if l <= 0 || l >= b.C {
			return false
		}
	}
	return true
}

// MultiplierEstimate is the dual-of-dual Lagrange-multiplier estimator of
// spec §4.4: μ_i(t,λ) = 1/(t·λ_i) for i < n, and 1/(t·(C-λ_{i-n})) otherwise,
// giving feasibility certificates for the 2n box constraints.
func MultiplierEstimate(t float64, lambda []float64, c float64) []float64 {
	n := len(lambda)
	mu := make([]float64, 2*n)
	for i, l := range lambda {
		mu[i] = 1 / (t * l)
		mu[n+i] = 1 / (t * (c - l))
	}
	return mu
}

// DualityGap returns the duality gap certificate 2n/t, which the
// truncated-Newton barrier schedule drives below n/1e8 (spec §4.2's
// "Choice of inner solver" clause).
func DualityGap(t float64, n int) float64 {
	return float64(2*n) / t
}

// Options carries the tunable thresholds of spec §6.3: duality gap
// tolerance, max CG iterations, barrier schedule parameters.
type Options struct {
	Tolerance    float64 // stopping tolerance ε on ‖Δλ‖/n or ‖M·g‖/n
	MaxCGIter    int
	InitialT     float64 // initial barrier parameter
	MuFactor     float64 // barrier parameter growth factor per outer sweep
	MaxOuterIter int
}

// DefaultOptions returns the thresholds used throughout the teacher's
// tron.go-derived defaults, adapted to the barrier setting.
func DefaultOptions() Options {
	return Options{
		Tolerance:    1e-6,
		MaxCGIter:    200,
		InitialT:     1.0,
		MuFactor:     10.0,
		MaxOuterIter: 50,
	}
}

// Certificate is the result of a constrained-minimisation call: the
// optimum λ* plus bookkeeping for callers that want to inspect
// convergence behaviour.
type Certificate struct {
	Optimum    []float64
	Iterations int
	Converged  bool
}

// Preconditioner returns a Jacobi preconditioner M(t, λ) = diag(1 /
// (t·diag(Q) + diag(H_φ(λ)))), per spec §4.2 step 4.
func Preconditioner(t float64, qDiag []float64, lambda []float64, box Box) []float64 {
	n := len(lambda)
	hPhiDiag := make([]float64, n)
	box.barrierHessianDiag(lambda, hPhiDiag)
	m := make([]float64, n)
	for i := 0; i < n; i++ {
		m[i] = 1 / (t*qDiag[i] + hPhiDiag[i])
	}
	return m
}
