package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotAt(hour int) Interval {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	return Interval{
		Start: day.Add(time.Duration(hour) * time.Hour),
		End:   day.Add(time.Duration(hour)*time.Hour + 30*time.Minute),
	}
}

func TestDragSelectionLifecycle(t *testing.T) {
	sel := NewDragSelection()
	assert.False(t, sel.Active())

	sel.Begin(DragAdd, slotAt(10))
	assert.True(t, sel.Active())
	assert.True(t, sel.Contains(slotAt(10).Start))

	require.NoError(t, sel.Extend(slotAt(11)))
	require.NoError(t, sel.Extend(slotAt(12)))

	mode, slots, err := sel.Finish()
	require.NoError(t, err)
	assert.Equal(t, DragAdd, mode)
	require.Len(t, slots, 3)
	// Слоты отсортированы по началу
	assert.Equal(t, slotAt(10), slots[0])
	assert.Equal(t, slotAt(12), slots[2])

	// После Finish пачка ждёт подтверждения отправки,
	// слоты всё ещё подсвечены
	assert.False(t, sel.Active())
	assert.True(t, sel.Submitting())
	assert.True(t, sel.Contains(slotAt(11).Start))

	require.NoError(t, sel.Complete())
	assert.False(t, sel.Submitting())
	assert.False(t, sel.Contains(slotAt(10).Start))
}

func TestDragSelectionSubmittingBlocksNewGestures(t *testing.T) {
	sel := NewDragSelection()
	sel.Begin(DragAdd, slotAt(10))
	_, _, err := sel.Finish()
	require.NoError(t, err)

	// Пока пачка не подтверждена, расширять нечего
	err = sel.Extend(slotAt(11))
	assert.ErrorIs(t, err, ErrSelectionNotActive)

	_, _, err = sel.Finish()
	assert.ErrorIs(t, err, ErrSelectionNotActive)
}

func TestDragSelectionCompleteWithoutFinish(t *testing.T) {
	sel := NewDragSelection()
	assert.ErrorIs(t, sel.Complete(), ErrSelectionNotActive)

	sel.Begin(DragAdd, slotAt(10))
	assert.ErrorIs(t, sel.Complete(), ErrSelectionNotActive)
}

func TestDragSelectionCancelDuringSubmit(t *testing.T) {
	sel := NewDragSelection()
	sel.Begin(DragAdd, slotAt(10))
	_, _, err := sel.Finish()
	require.NoError(t, err)

	sel.Cancel()
	assert.False(t, sel.Submitting())

	// Новая протяжка начинается с чистого множества
	sel.Begin(DragRemove, slotAt(15))
	assert.False(t, sel.Contains(slotAt(10).Start))
	assert.True(t, sel.Contains(slotAt(15).Start))
}

func TestDragSelectionExtendWithoutBegin(t *testing.T) {
	sel := NewDragSelection()
	err := sel.Extend(slotAt(10))
	assert.ErrorIs(t, err, ErrSelectionNotActive)
}

func TestDragSelectionFinishWithoutBegin(t *testing.T) {
	sel := NewDragSelection()
	_, _, err := sel.Finish()
	assert.ErrorIs(t, err, ErrSelectionNotActive)
}

func TestDragSelectionDuplicatesCollapse(t *testing.T) {
	sel := NewDragSelection()
	sel.Begin(DragRemove, slotAt(10))
	require.NoError(t, sel.Extend(slotAt(10)))
	require.NoError(t, sel.Extend(slotAt(10)))

	mode, slots, err := sel.Finish()
	require.NoError(t, err)
	assert.Equal(t, DragRemove, mode)
	assert.Len(t, slots, 1)
}

func TestDragSelectionRestart(t *testing.T) {
	sel := NewDragSelection()
	sel.Begin(DragAdd, slotAt(10))
	require.NoError(t, sel.Extend(slotAt(11)))

	// Повторный Begin отбрасывает накопленное
	sel.Begin(DragRemove, slotAt(15))

	mode, slots, err := sel.Finish()
	require.NoError(t, err)
	assert.Equal(t, DragRemove, mode)
	require.Len(t, slots, 1)
	assert.Equal(t, slotAt(15), slots[0])
}

func TestDragSelectionCancel(t *testing.T) {
	sel := NewDragSelection()
	sel.Begin(DragAdd, slotAt(10))
	sel.Cancel()

	assert.False(t, sel.Active())
	assert.False(t, sel.Contains(slotAt(10).Start))

	_, _, err := sel.Finish()
	assert.ErrorIs(t, err, ErrSelectionNotActive)
}
