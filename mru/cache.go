// Package mru implements the generic most-recently-used cache contract
// consumed by the Hessian row cache (spec §6.2). Keys are int32 row
// indices; values are []float32 rows. Both a single-threaded variant (used
// by the coordinate-descent trainers, which orchestrate their own
// parallelism externally) and a thread-safe variant (used by the chunking
// trainer's concurrent subtensor pre-fetch) are provided behind the same
// Cache interface.
package mru

import (
	"container/list"
	"sync"
)

// Loader computes the value for a key on a cache miss.
type Loader func(key int32) []float32

// Statistics reports cumulative cache activity (spec §6.2).
type Statistics struct {
	Hits  int64
	Total int64
	Items int
}

// HitRatio returns Hits/Total, or 0 when Total is 0.
func (s Statistics) HitRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Total)
}

// Cache is the MRU cache contract of spec §6.2.
type Cache interface {
	// Get returns the cached value for key, promoting it to
	// most-recently-used, or invokes the loader, inserts the result,
	// evicting the least-recently-used entry if at capacity, and returns
	// it.
	Get(key int32) []float32

	// Clear empties the cache.
	Clear()

	// MaxCount returns the cache's capacity.
	MaxCount() int

	// Statistics returns cumulative hit/total/item counters.
	Statistics() Statistics

	// ResetStatistics zeroes the hit/total counters without evicting
	// entries.
	ResetStatistics()
}

type entry struct {
	key   int32
	value []float32
}

// sequential is the single-threaded MRU cache variant. No locking: callers
// orchestrating their own parallelism (the coordinate-descent trainers)
// must not share one across goroutines.
type sequential struct {
	maxCount int
	loader   Loader
	order    *list.List // front = most recently used
	index    map[int32]*list.Element
	hits     int64
	total    int64
}

// NewSequential returns a single-threaded Cache with the given capacity and
// loader.
func NewSequential(maxCount int, loader Loader) Cache {
	return &sequential{
		maxCount: maxCount,
		loader:   loader,
		order:    list.New(),
		index:    make(map[int32]*list.Element, maxCount),
	}
}

func (c *sequential) Get(key int32) []float32 {
	c.total++
	if el, ok := c.index[key]; ok {
		c.hits++
		c.order.MoveToFront(el)
		return el.Value.(*entry).value
	}

	value := c.loader(key)
	c.insert(key, value)
	return value
}

func (c *sequential) insert(key int32, value []float32) {
	if c.maxCount > 0 && c.order.Len() >= c.maxCount {
		back := c.order.Back()
		if back != nil {
			c.order.Remove(back)
			delete(c.index, back.Value.(*entry).key)
		}
	}
	el := c.order.PushFront(&entry{key: key, value: value})
	c.index[key] = el
}

func (c *sequential) Clear() {
	c.order.Init()
	c.index = make(map[int32]*list.Element, c.maxCount)
}

func (c *sequential) MaxCount() int {
	return c.maxCount
}

func (c *sequential) Statistics() Statistics {
	return Statistics{Hits: c.hits, Total: c.total, Items: c.order.Len()}
}

func (c *sequential) ResetStatistics() {
	c.hits = 0
	c.total = 0
}

// threadSafe is the concurrent MRU cache variant, guarded by a single
// coarse mutex — the same coarse-locking preference the teacher shows with
// its single abool.AtomicBool rather than a sharded structure (spec §9
// explicitly allows sharding as a future refinement while preserving the
// "returned row remains valid after eviction" property, which holds here
// because callers hold their own slice reference once Get returns).
type threadSafe struct {
	mu sequential
	lk sync.Mutex
}

// NewThreadSafe returns a concurrency-safe Cache with the given capacity
// and loader. Under contention, a second caller requesting the same
// missing row recomputes it independently rather than blocking on the
// first computation, per spec §4.3's "either is acceptable" clause — this
// keeps the critical section free of calls into the loader, which may
// itself fork goroutines.
func NewThreadSafe(maxCount int, loader Loader) Cache {
	return &threadSafe{
		mu: sequential{
			maxCount: maxCount,
			loader:   loader,
			order:    list.New(),
			index:    make(map[int32]*list.Element, maxCount),
		},
	}
}

func (c *threadSafe) Get(key int32) []float32 {
	c.lk.Lock()
	c.mu.total++
	if el, ok := c.mu.index[key]; ok {
		c.mu.hits++
		c.mu.order.MoveToFront(el)
		value := el.Value.(*entry).value
		c.lk.Unlock()
		return value
	}
	loader := c.mu.loader
	c.lk.Unlock()

	value := loader(key)

	c.lk.Lock()
	if el, ok := c.mu.index[key]; ok {
		// Another goroutine raced us and already inserted this key;
		// keep its value to satisfy "identical to ComputeRow" without
		// caring which computation won.
		c.mu.order.MoveToFront(el)
		value = el.Value.(*entry).value
	} else {
		c.mu.insert(key, value)
	}
	c.lk.Unlock()
	return value
}

func (c *threadSafe) Clear() {
	c.lk.Lock()
	defer c.lk.Unlock()
	c.mu.Clear()
}

func (c *threadSafe) MaxCount() int {
	return c.mu.maxCount
}

func (c *threadSafe) Statistics() Statistics {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.mu.Statistics()
}

func (c *threadSafe) ResetStatistics() {
	c.lk.Lock()
	defer c.lk.Unlock()
	c.mu.ResetStatistics()
}
