package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourInterval(day time.Time, from, to int) Interval {
	return Interval{
		Start: day.Add(time.Duration(from) * time.Hour),
		End:   day.Add(time.Duration(to) * time.Hour),
	}
}

func TestMergeContiguous(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	// [10-11, 11-12, 13-14] -> [10-12, 13-14]
	merged := MergeContiguous([]Interval{
		hourInterval(day, 10, 11),
		hourInterval(day, 11, 12),
		hourInterval(day, 13, 14),
	})

	require.Len(t, merged, 2)
	assert.Equal(t, hourInterval(day, 10, 12), merged[0])
	assert.Equal(t, hourInterval(day, 13, 14), merged[1])
}

func TestMergeContiguousUnsortedInput(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	merged := MergeContiguous([]Interval{
		hourInterval(day, 13, 14),
		hourInterval(day, 10, 11),
		hourInterval(day, 11, 12),
	})

	require.Len(t, merged, 2)
	assert.Equal(t, hourInterval(day, 10, 12), merged[0])
}

func TestMergeContiguousIdempotent(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	input := []Interval{
		hourInterval(day, 10, 11),
		hourInterval(day, 11, 12),
		hourInterval(day, 13, 14),
	}

	once := MergeContiguous(input)
	twice := MergeContiguous(once)
	assert.Equal(t, once, twice)
}

func TestMergeContiguousEmpty(t *testing.T) {
	assert.Nil(t, MergeContiguous(nil))
	assert.Nil(t, MergeContiguous([]Interval{}))
}

func TestMergeContiguousSingle(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	single := []Interval{hourInterval(day, 10, 11)}
	assert.Equal(t, single, MergeContiguous(single))
}

func TestMergeContiguousDoesNotMutateInput(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	input := []Interval{
		hourInterval(day, 13, 14),
		hourInterval(day, 10, 11),
	}

	MergeContiguous(input)
	assert.Equal(t, hourInterval(day, 13, 14), input[0])
}
