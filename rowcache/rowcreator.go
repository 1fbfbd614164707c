// Package rowcache materialises rows of the signed-Gram Hessian
// Q_ij = y_i·y_j·K(x_i, x_j) on demand, cached under an MRU policy, and
// exposes the active-set linear operators the chunking trainer needs
// (spec §4.3).
package rowcache

import (
	"sync"
	"sync/atomic"

	"github.com/grammophone/gosvm/kernel"
	"github.com/grammophone/gosvm/partition"
)

// RowCreator computes one signed-Gram row on demand (spec §4.3).
type RowCreator[T any] interface {
	ComputeRow(i int) []float32
}

// rows holds what every RowCreator implementation needs: the training
// items, their labels, and the kernel to fork per row.
type rows[T any] struct {
	items  []T
	labels []float64
	k      kernel.Kernel[T]
}

// Serial computes a row with a single for-loop over j, forking one kernel
// evaluator for the row (spec §4.3's "Serial" row creator).
type Serial[T any] struct {
	rows[T]
}

// NewSerial returns a serial row creator.
func NewSerial[T any](items []T, labels []float64, k kernel.Kernel[T]) *Serial[T] {
	return &Serial[T]{rows: rows[T]{items: items, labels: labels, k: k}}
}

func (s *Serial[T]) ComputeRow(i int) []float32 {
	return computeRowWith(s.items, s.labels, s.k, i, 0, len(s.items))
}

func computeRowWith[T any](items []T, labels []float64, k kernel.Kernel[T], i, lo, hi int) []float32 {
	forked := k.ForkNew()
	forked.AddComponent(1, items[i])
	row := make([]float32, hi-lo)
	yi := labels[i]
	for j := lo; j < hi; j++ {
		row[j-lo] = float32(yi * labels[j] * forked.ComputeSum(items[j]))
	}
	return row
}

// StaticParallel partitions {0..P} into contiguous equal-length slices, one
// per worker, each forking its own kernel evaluator (spec §4.3's
// "Static-parallel" row creator).
type StaticParallel[T any] struct {
	rows[T]
	workers int
}

// NewStaticParallel returns a static-parallel row creator using the given
// worker count.
func NewStaticParallel[T any](items []T, labels []float64, k kernel.Kernel[T], workers int) *StaticParallel[T] {
	if workers < 1 {
		workers = 1
	}
	return &StaticParallel[T]{rows: rows[T]{items: items, labels: labels, k: k}, workers: workers}
}

func (s *StaticParallel[T]) ComputeRow(i int) []float32 {
	p := len(s.items)
	row := make([]float32, p)
	yi := s.labels[i]

	ranges := partition.StaticRangePartitioner(0, p, s.workers)
	var wg sync.WaitGroup
	for _, r := range ranges {
		if r.Len() == 0 {
			continue
		}
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			forked := s.k.ForkNew()
			forked.AddComponent(1, s.items[i])
			for j := r.Start; j < r.End; j++ {
				row[j] = float32(yi * s.labels[j] * forked.ComputeSum(s.items[j]))
			}
		}()
	}
	wg.Wait()
	return row
}

// LoadBalancingParallel distributes column indices dynamically across
// workers via a shared atomic cursor, chosen when per-pair kernel cost
// varies (spec §4.3's "Load-balancing parallel" row creator, e.g.
// variable-length sequence kernels). The pack has no work-stealing
// scheduler dependency to draw on, so the cursor is the stdlib
// substitute: each worker claims a small contiguous batch at a time
// instead of a whole static partition.
type LoadBalancingParallel[T any] struct {
	rows[T]
	workers   int
	batchSize int
}

// NewLoadBalancingParallel returns a work-stealing row creator. batchSize
// controls how many columns a worker claims per cursor increment; a
// smaller batch balances load more finely at the cost of more atomic
// contention.
func NewLoadBalancingParallel[T any](items []T, labels []float64, k kernel.Kernel[T], workers, batchSize int) *LoadBalancingParallel[T] {
	if workers < 1 {
		workers = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &LoadBalancingParallel[T]{rows: rows[T]{items: items, labels: labels, k: k}, workers: workers, batchSize: batchSize}
}

func (s *LoadBalancingParallel[T]) ComputeRow(i int) []float32 {
	p := len(s.items)
	row := make([]float32, p)
	yi := s.labels[i]

	var cursor int64
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			forked := s.k.ForkNew()
			forked.AddComponent(1, s.items[i])
			for {
				start := int(atomic.AddInt64(&cursor, int64(s.batchSize))) - s.batchSize
				if start >= p {
					return
				}
				end := start + s.batchSize
				if end > p {
					end = p
				}
				for j := start; j < end; j++ {
					row[j] = float32(yi * s.labels[j] * forked.ComputeSum(s.items[j]))
				}
			}
		}()
	}
	wg.Wait()
	return row
}
