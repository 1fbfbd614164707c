package rowcache

import (
	"sync"

	"github.com/grammophone/gosvm/mru"
	"github.com/grammophone/gosvm/partition"
)

// Cache is the Hessian row cache contract of spec §4.3: an MRU-indexed
// store of signed-Gram rows, plus the memoised diagonal and the
// active-set linear operators the chunking trainer needs.
type Cache[T any] struct {
	p       int
	creator RowCreator[T]
	store   mru.Cache

	diagOnce sync.Once
	diag     []float64
}

// New wraps a RowCreator with an MRU cache of the given capacity. The
// sequential or thread-safe mru.Cache variant is selected by the caller via
// newStore — coordinate-descent trainers orchestrate their own
// parallelism and should pass mru.NewSequential; the chunking trainer's
// concurrent subtensor pre-fetch requires mru.NewThreadSafe.
func New[T any](p int, creator RowCreator[T], newStore func(maxCount int, loader mru.Loader) mru.Cache, cacheSize int) *Cache[T] {
	c := &Cache[T]{p: p, creator: creator}
	c.store = newStore(cacheSize, func(key int32) []float32 {
		return creator.ComputeRow(int(key))
	})
	return c
}

// NewSequential returns a Cache backed by a single-threaded MRU store.
func NewSequential[T any](p int, creator RowCreator[T], cacheSize int) *Cache[T] {
	return New[T](p, creator, mru.NewSequential, cacheSize)
}

// NewThreadSafe returns a Cache backed by a concurrency-safe MRU store.
func NewThreadSafe[T any](p int, creator RowCreator[T], cacheSize int) *Cache[T] {
	return New[T](p, creator, mru.NewThreadSafe, cacheSize)
}

// Row returns the cached row for i, computing and inserting it on a miss.
func (c *Cache[T]) Row(i int) []float32 {
	return c.store.Get(int32(i))
}

// Diagonal returns Q_ii for all i, computed lazily on first call.
func (c *Cache[T]) Diagonal() []float64 {
	c.diagOnce.Do(func() {
		c.diag = make([]float64, c.p)
		for i := 0; i < c.p; i++ {
			row := c.Row(i)
			c.diag[i] = float64(row[i])
		}
	})
	return c.diag
}

// Statistics returns the underlying MRU store's cumulative counters.
func (c *Cache[T]) Statistics() mru.Statistics {
	return c.store.Statistics()
}

// ResetStatistics zeroes the underlying MRU store's counters.
func (c *Cache[T]) ResetStatistics() {
	c.store.ResetStatistics()
}

// Clear empties the underlying MRU store.
func (c *Cache[T]) Clear() {
	c.store.Clear()
}

// ActiveSubtensors pre-fetches all |B| rows in parallel and returns the
// three lazily-evaluated linear operators (Q_BB, Q_BN, Q_a) the chunking
// trainer's subproblem needs, plus the materialised diagonal of Q_BB
// (spec §4.3). The fetched
// rows are captured by value into the returned operators, so they remain
// valid for the subproblem's lifetime even if the cache evicts them
// afterward.
func (c *Cache[T]) ActiveSubtensors(b, n []int) *Subtensors {
	rows := make(map[int][]float32, len(b))
	var mu sync.Mutex

	workers := len(b)
	if workers > 8 {
		workers = 8
	}
	ranges := partition.StaticRangePartitioner(0, len(b), workers)
	var wg sync.WaitGroup
	for _, r := range ranges {
		if r.Len() == 0 {
			continue
		}
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make(map[int][]float32, r.Len())
			for idx := r.Start; idx < r.End; idx++ {
				i := b[idx]
				local[i] = c.Row(i)
			}
			mu.Lock()
			for k, v := range local {
				rows[k] = v
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	diagBB := make([]float64, len(b))
	for idx, i := range b {
		diagBB[idx] = float64(rows[i][i])
	}

	return &Subtensors{b: b, n: n, rows: rows, diagBB: diagBB, p: c.p}
}
