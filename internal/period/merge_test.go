package period

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeEmpty(t *testing.T) {
	assert.Equal(t, []TimePeriod{}, Merge(nil))
	assert.Equal(t, []TimePeriod{}, IntersectChain([]TimePeriod{}))
}

func TestMergeSingle(t *testing.T) {
	p := MustNew(day(1), day(5), WithName("only"))
	got := Merge([]TimePeriod{p})
	require.Len(t, got, 1)
	assert.Equal(t, p, got[0])
}

func TestMergeDisjointSortedAndUnmodified(t *testing.T) {
	early := MustNew(day(1), day(5))
	late := MustNew(day(10), day(15))
	in := []TimePeriod{late, early}

	got := Merge(in)
	require.Len(t, got, 2)
	assert.Equal(t, early, got[0])
	assert.Equal(t, late, got[1])

	// Input order is preserved.
	assert.Equal(t, late, in[0])
}

func TestMergeUnionsOverlappingChain(t *testing.T) {
	in := []TimePeriod{
		MustNew(day(8), day(12)),
		MustNew(day(1), day(5)),
		MustNew(day(4), day(9)),
		MustNew(day(12), day(14)), // touches the previous span
		MustNew(day(20), day(22)),
	}
	got := Merge(in)
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(MustNew(day(1), day(14))), got[0].String())
	assert.True(t, got[1].Equal(MustNew(day(20), day(22))), got[1].String())
}

func TestMergeContainedPeriods(t *testing.T) {
	got := Merge([]TimePeriod{
		MustNew(day(1), day(20)),
		MustNew(day(2), day(3)),
		MustNew(day(5), day(6)),
	})
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(MustNew(day(1), day(20))))
}

func TestIntersectChainNarrows(t *testing.T) {
	in := []TimePeriod{
		MustNew(day(3), day(10)),
		MustNew(day(1), day(8)),
		MustNew(day(5), day(12)),
		MustNew(day(20), day(25)),
	}
	got := IntersectChain(in)
	require.Len(t, got, 2)
	// [1,8] ∩ [3,10] ∩ [5,12] = [5,8]
	assert.True(t, got[0].Equal(MustNew(day(5), day(8))), got[0].String())
	assert.True(t, got[1].Equal(MustNew(day(20), day(25))))
}

func TestIntersectChainComparesAgainstNarrowedAccumulator(t *testing.T) {
	// [1,10] ∩ [2,3] = [2,3]; [4,6] no longer overlaps the accumulator even
	// though it overlaps the first period, so it starts a new span.
	got := IntersectChain([]TimePeriod{
		MustNew(day(1), day(10)),
		MustNew(day(2), day(3)),
		MustNew(day(4), day(6)),
	})
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(MustNew(day(2), day(3))))
	assert.True(t, got[1].Equal(MustNew(day(4), day(6))))

	merged := Merge([]TimePeriod{
		MustNew(day(1), day(10)),
		MustNew(day(2), day(3)),
		MustNew(day(4), day(6)),
	})
	require.Len(t, merged, 1)
	assert.True(t, merged[0].Equal(MustNew(day(1), day(10))))
}
