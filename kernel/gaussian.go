package kernel

import "math"

// Gaussian is the radial-basis-function kernel K(x, y) = exp(-γ·‖x-y‖²)
// over dense []float64 vectors, grounded on
// text2phenotype-ctakes-go__kernel.go's KernelTypeRbf case. A reference
// implementation for tests and the demo CLI, not part of the trained core.
type Gaussian struct {
	gamma      float64
	components []component[[]float64]
}

// NewGaussian returns an empty Gaussian kernel with the given γ.
func NewGaussian(gamma float64) *Gaussian {
	return &Gaussian{gamma: gamma}
}

func (k *Gaussian) Compute(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	var sqDist float64
	for i := 0; i < n; i++ {
		d := x[i] - y[i]
		sqDist += d * d
	}
	return math.Exp(-k.gamma * sqDist)
}

func (k *Gaussian) ComputeSum(x []float64) float64 {
	var sum float64
	for _, c := range k.components {
		sum += c.weight * k.Compute(c.item, x)
	}
	return sum
}

func (k *Gaussian) AddComponent(weight float64, x []float64) {
	k.components = append(k.components, component[[]float64]{weight: weight, item: x})
}

func (k *Gaussian) ClearComponents() {
	k.components = nil
}

func (k *Gaussian) HasComponents() bool {
	return len(k.components) > 0
}

func (k *Gaussian) ForkNew() Kernel[[]float64] {
	return &Gaussian{gamma: k.gamma}
}
