package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticRangePartitionerCoverage(t *testing.T) {
	for _, tc := range []struct {
		start, end, n int
	}{
		{0, 10, 3},
		{5, 5 + 17, 4},
		{0, 1, 1},
		{0, 100, 7},
		{3, 3, 5},
	} {
		ranges := StaticRangePartitioner(tc.start, tc.end, tc.n)
		if tc.end <= tc.start {
			assert.Nil(t, ranges)
			continue
		}
		require := assert.New(t)
		require.Len(ranges, tc.n)
		require.Equal(tc.start, ranges[0].Start)
		require.Equal(tc.end, ranges[len(ranges)-1].End)
		for i := 1; i < len(ranges); i++ {
			require.Equal(ranges[i-1].End, ranges[i].Start, "ranges must be contiguous")
		}
		total := 0
		for _, r := range ranges {
			require.GreaterOrEqual(r.End, r.Start)
			total += r.Len()
		}
		require.Equal(tc.end-tc.start, total)
	}
}

func TestStaticRangePartitionerDegenerate(t *testing.T) {
	assert.Nil(t, StaticRangePartitioner(0, 10, 0))
	assert.Nil(t, StaticRangePartitioner(0, 10, -1))
	assert.Nil(t, StaticRangePartitioner(10, 10, 3))
}

func TestStaticRangePartitionerMorePartitionsThanElements(t *testing.T) {
	ranges := StaticRangePartitioner(0, 2, 5)
	assert := assert.New(t)
	assert.Len(ranges, 5)
	total := 0
	for _, r := range ranges {
		total += r.Len()
	}
	assert.Equal(2, total)
	assert.Equal(0, ranges[0].Start)
	assert.Equal(2, ranges[len(ranges)-1].End)
}
