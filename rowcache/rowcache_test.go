package rowcache

import (
	"math/rand"
	"testing"

	"github.com/grammophone/gosvm/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toyProblem(p int) ([][]float64, []float64, kernel.Kernel[[]float64]) {
	items := make([][]float64, p)
	labels := make([]float64, p)
	r := rand.New(rand.NewSource(42))
	for i := range items {
		items[i] = []float64{r.Float64()*4 - 2, r.Float64()*4 - 2}
		if i%2 == 0 {
			labels[i] = 1
		} else {
			labels[i] = -1
		}
	}
	return items, labels, kernel.NewGaussian(0.5)
}

func TestRowCreatorsAgree(t *testing.T) {
	items, labels, k := toyProblem(12)
	serial := NewSerial(items, labels, k)
	static := NewStaticParallel(items, labels, k, 4)
	lb := NewLoadBalancingParallel(items, labels, k, 4, 2)

	for i := 0; i < len(items); i++ {
		want := serial.ComputeRow(i)
		assert.Equal(t, want, static.ComputeRow(i), "static-parallel row %d", i)
		assert.Equal(t, want, lb.ComputeRow(i), "load-balancing row %d", i)
	}
}

func TestRowCreatorSymmetric(t *testing.T) {
	items, labels, k := toyProblem(8)
	serial := NewSerial(items, labels, k)
	rows := make([][]float32, len(items))
	for i := range items {
		rows[i] = serial.ComputeRow(i)
	}
	for i := range items {
		for j := range items {
			assert.InDelta(t, rows[i][j], rows[j][i], 1e-4, "Q[%d][%d] != Q[%d][%d]", i, j, j, i)
		}
	}
}

func TestCacheRowMatchesFreshCompute(t *testing.T) {
	items, labels, k := toyProblem(16)
	creator := NewSerial(items, labels, k)
	cache := NewSequential[[]float64](len(items), creator, 4)

	order := []int{3, 7, 1, 3, 15, 0, 7, 9, 2, 3}
	for _, i := range order {
		assert.Equal(t, creator.ComputeRow(i), cache.Row(i))
	}
}

func TestCacheDiagonalMemoized(t *testing.T) {
	items, labels, k := toyProblem(6)
	creator := NewSerial(items, labels, k)
	cache := NewSequential[[]float64](len(items), creator, 4)

	d1 := cache.Diagonal()
	d2 := cache.Diagonal()
	require.Equal(t, d1, d2)
	for i := range items {
		assert.InDelta(t, float64(creator.ComputeRow(i)[i]), d1[i], 1e-6)
	}
}

func TestActiveSubtensorsConsistentWithFullRows(t *testing.T) {
	items, labels, k := toyProblem(10)
	creator := NewSerial(items, labels, k)
	cache := NewThreadSafe[[]float64](len(items), creator, 1024)

	b := []int{1, 3, 5, 7}
	bSet := map[int]bool{}
	for _, i := range b {
		bSet[i] = true
	}
	var n []int
	for i := range items {
		if !bSet[i] {
			n = append(n, i)
		}
	}

	sub := cache.ActiveSubtensors(b, n)

	lambda := []float64{0.1, 0.2, 0.3, 0.4}
	got := sub.QBB(lambda)
	want := make([]float64, len(b))
	for idx, i := range b {
		row := creator.ComputeRow(i)
		for idx2, j := range b {
			want[idx] += float64(row[j]) * lambda[idx2]
		}
	}
	for idx := range want {
		assert.InDelta(t, want[idx], got[idx], 1e-4)
	}

	diag := sub.DiagBB()
	for idx, i := range b {
		assert.InDelta(t, float64(creator.ComputeRow(i)[i]), diag[idx], 1e-6)
	}

	v := []float64{1, -1, 0.5, 0}
	qa := sub.QA(v)
	require.Len(t, qa, len(items))
	wantQA := make([]float64, len(items))
	for idx, i := range b {
		row := creator.ComputeRow(i)
		for j := range items {
			wantQA[j] += float64(row[j]) * v[idx]
		}
	}
	for j := range wantQA {
		assert.InDelta(t, wantQA[j], qa[j], 1e-4)
	}
}

func TestCacheStatistics(t *testing.T) {
	items, labels, k := toyProblem(5)
	creator := NewSerial(items, labels, k)
	cache := NewSequential[[]float64](len(items), creator, 10)

	cache.Row(0)
	cache.Row(0)
	cache.Row(1)

	stats := cache.Statistics()
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.Hits)

	cache.ResetStatistics()
	stats = cache.Statistics()
	assert.EqualValues(t, 0, stats.Total)
	assert.EqualValues(t, 0, stats.Hits)
}
