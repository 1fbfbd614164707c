package mru

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func computeRow(key int32) []float32 {
	row := make([]float32, 4)
	for j := range row {
		row[j] = float32(key)*10 + float32(j)
	}
	return row
}

func TestSequentialHitsAndEviction(t *testing.T) {
	var loads int
	loader := func(key int32) []float32 {
		loads++
		return computeRow(key)
	}
	c := NewSequential(2, loader)

	assert.Equal(t, computeRow(0), c.Get(0))
	assert.Equal(t, computeRow(1), c.Get(1))
	assert.Equal(t, 2, loads)

	// Touch 0 again: hit, no new load, and 0 becomes MRU so 1 is evicted next.
	assert.Equal(t, computeRow(0), c.Get(0))
	assert.Equal(t, 2, loads)

	// Inserting 2 should evict 1 (the LRU), not 0.
	c.Get(2)
	assert.Equal(t, 3, loads)

	stats := c.Statistics()
	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 1, stats.Hits)
	assert.Equal(t, 2, stats.Items)

	// 1 was evicted: fetching it again must recompute.
	c.Get(1)
	assert.Equal(t, 4, loads)
}

func TestSequentialResetStatistics(t *testing.T) {
	c := NewSequential(4, computeRow)
	c.Get(0)
	c.Get(0)
	c.ResetStatistics()
	stats := c.Statistics()
	assert.EqualValues(t, 0, stats.Hits)
	assert.EqualValues(t, 0, stats.Total)
	assert.Equal(t, 1, stats.Items)
}

func TestSequentialClear(t *testing.T) {
	c := NewSequential(4, computeRow)
	c.Get(0)
	c.Get(1)
	c.Clear()
	assert.Equal(t, 0, c.Statistics().Items)
}

func TestThreadSafeCorrectnessUnderConcurrentRandomAccess(t *testing.T) {
	const P = 16
	c := NewThreadSafe(4, computeRow)

	var wg sync.WaitGroup
	errs := make(chan string, 1000)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				key := int32(r.Intn(P))
				got := c.Get(key)
				want := computeRow(key)
				for j := range want {
					if got[j] != want[j] {
						errs <- fmt.Sprintf("key %d: got %v want %v", key, got, want)
						return
					}
				}
			}
		}(int64(g))
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}

func TestCacheRowEqualsFreshCompute(t *testing.T) {
	c := NewSequential(1, computeRow)
	order := []int32{3, 1, 3, 2, 1, 0, 3}
	for _, k := range order {
		assert.Equal(t, computeRow(k), c.Get(k))
	}
}
