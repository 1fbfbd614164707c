package innersolver

import "math"

// daxpy, dot, euclideanNorm and scale are the BLAS-1-style vector helpers
// the Newton CG loop runs on every iteration, adapted from
// liblinear/tron.go's identically-named helpers (the teacher's own
// trust-region Newton solver).
func daxpy(constant float64, x, y []float64) {
	if constant == 0 {
		return
	}
	for i := range x {
		y[i] += constant * x[i]
	}
}

func dot(x, y []float64) float64 {
	var sum float64
	for i := range x {
		sum += x[i] * y[i]
	}
	return sum
}

// euclideanNorm uses the same scaled sum-of-squares accumulation as the
// teacher's version to avoid premature overflow/underflow on large or
// tiny vectors.
func euclideanNorm(v []float64) float64 {
	n := len(v)
	if n < 1 {
		return 0
	}
	if n == 1 {
		return math.Abs(v[0])
	}
	var scaleFactor float64
	sum := 1.0
	for _, x := range v {
		if x == 0 {
			continue
		}
		abs := math.Abs(x)
		if scaleFactor < abs {
			t := scaleFactor / abs
			sum = 1 + sum*t*t
			scaleFactor = abs
		} else {
			t := abs / scaleFactor
			sum += t * t
		}
	}
	return scaleFactor * math.Sqrt(sum)
}

func scaleVector(constant float64, v []float64) {
	if constant == 1.0 {
		return
	}
	for i := range v {
		v[i] *= constant
	}
}
