package service

import (
	"context"
	"testing"
	"time"

	"bandsync/internal/schedule"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPracticeToggleSelfInverse(t *testing.T) {
	env := newTestEnv()
	svc := env.practiceService(nil)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	start := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	confirmed, err := svc.Toggle(context.Background(), group.ID, owner, start, end)
	require.NoError(t, err)
	assert.True(t, confirmed)

	confirmed, err = svc.Toggle(context.Background(), group.ID, owner, start, end)
	require.NoError(t, err)
	assert.False(t, confirmed)

	events, err := env.events.ListByGroupRange(context.Background(), group.ID, start.Add(-time.Hour), end.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPracticeToggleBlockedByMemberBusy(t *testing.T) {
	env := newTestEnv()
	svc := env.practiceService(nil)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	member := uuid.New()
	_, err := env.groupService().JoinByCode(context.Background(), member, "ABC123")
	require.NoError(t, err)

	start := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	// Занят другой участник, не инициатор
	env.busy.addBusy(member, start, end)

	_, err = svc.Toggle(context.Background(), group.ID, owner, start, end)
	assert.ErrorIs(t, err, ErrSlotBusy)
}

func TestPracticeToggleRemovalAllowedOverBusy(t *testing.T) {
	env := newTestEnv()
	svc := env.practiceService(nil)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	start := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	confirmed, err := svc.Toggle(context.Background(), group.ID, owner, start, end)
	require.NoError(t, err)
	require.True(t, confirmed)

	env.busy.addBusy(owner, start, end)

	confirmed, err = svc.Toggle(context.Background(), group.ID, owner, start, end)
	require.NoError(t, err)
	assert.False(t, confirmed)
}

func TestPracticeBulkAdminOnly(t *testing.T) {
	env := newTestEnv()
	svc := env.practiceService(nil)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	member := uuid.New()
	_, err := env.groupService().JoinByCode(context.Background(), member, "ABC123")
	require.NoError(t, err)

	start := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	slots := []schedule.Interval{{Start: start, End: start.Add(30 * time.Minute)}}

	_, err = svc.BulkUpdate(context.Background(), group.ID, member, schedule.DragAdd, slots)
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestPracticeBulkTally(t *testing.T) {
	env := newTestEnv()
	svc := env.practiceService(nil)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	base := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	slots := []schedule.Interval{
		{Start: base, End: base.Add(30 * time.Minute)},
		{Start: base.Add(30 * time.Minute), End: base.Add(time.Hour)},
		{Start: base.Add(time.Hour), End: base.Add(90 * time.Minute)},
	}

	result, err := svc.BulkUpdate(context.Background(), group.ID, owner, schedule.DragAdd, slots)
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Attempted: 3, Succeeded: 3, Failed: 0}, result)

	events, err := env.events.ListByGroupRange(context.Background(), group.ID, base.Add(-time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestPracticeBulkDuplicateCountsAsSuccess(t *testing.T) {
	env := newTestEnv()
	svc := env.practiceService(nil)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	start := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	slots := []schedule.Interval{{Start: start, End: start.Add(30 * time.Minute)}}

	_, err := svc.BulkUpdate(context.Background(), group.ID, owner, schedule.DragAdd, slots)
	require.NoError(t, err)

	// Повторное подтверждение того же слота: дубликат считается успехом
	result, err := svc.BulkUpdate(context.Background(), group.ID, owner, schedule.DragAdd, slots)
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Attempted: 1, Succeeded: 1, Failed: 0}, result)
}

func TestPracticeBulkAnnouncesMergedRuns(t *testing.T) {
	env := newTestEnv()
	announcer := &recordingAnnouncer{}
	svc := env.practiceService(announcer)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	base := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	slots := []schedule.Interval{
		{Start: base, End: base.Add(30 * time.Minute)},
		{Start: base.Add(30 * time.Minute), End: base.Add(time.Hour)},
		{Start: base.Add(2 * time.Hour), End: base.Add(150 * time.Minute)},
	}

	_, err := svc.BulkUpdate(context.Background(), group.ID, owner, schedule.DragAdd, slots)
	require.NoError(t, err)

	assert.Equal(t, 1, announcer.calls)
	assert.Equal(t, group.Name, announcer.groupName)
	// Два соседних слота склеены в один интервал
	require.Len(t, announcer.runs, 2)
	assert.Equal(t, base, announcer.runs[0].Start)
	assert.Equal(t, base.Add(time.Hour), announcer.runs[0].End)
}

func TestPracticeBulkRemoveDoesNotAnnounce(t *testing.T) {
	env := newTestEnv()
	announcer := &recordingAnnouncer{}
	svc := env.practiceService(announcer)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	start := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	slots := []schedule.Interval{{Start: start, End: start.Add(30 * time.Minute)}}

	_, err := svc.BulkUpdate(context.Background(), group.ID, owner, schedule.DragRemove, slots)
	require.NoError(t, err)
	assert.Equal(t, 0, announcer.calls)
}

func TestMergedRunsGluesAdjacentSlots(t *testing.T) {
	env := newTestEnv()
	svc := env.practiceService(nil)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	base := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	slots := []schedule.Interval{
		{Start: base, End: base.Add(30 * time.Minute)},
		{Start: base.Add(30 * time.Minute), End: base.Add(time.Hour)},
		{Start: base.Add(2 * time.Hour), End: base.Add(150 * time.Minute)},
	}

	_, err := svc.BulkUpdate(context.Background(), group.ID, owner, schedule.DragAdd, slots)
	require.NoError(t, err)

	runs, err := svc.MergedRuns(context.Background(), group.ID, owner, base.Add(-time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, base, runs[0].Start)
	assert.Equal(t, base.Add(time.Hour), runs[0].End)
	assert.Equal(t, base.Add(2*time.Hour), runs[1].Start)
}

func TestPracticeClearAllOwnerOnly(t *testing.T) {
	env := newTestEnv()
	svc := env.practiceService(nil)
	owner := uuid.New()
	group := env.addGroup(owner, "ABC123")

	member := uuid.New()
	_, err := env.groupService().JoinByCode(context.Background(), member, "ABC123")
	require.NoError(t, err)

	start := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	_, err = svc.Toggle(context.Background(), group.ID, owner, start, start.Add(30*time.Minute))
	require.NoError(t, err)

	_, err = svc.ClearAll(context.Background(), group.ID, member)
	assert.ErrorIs(t, err, ErrNotOwner)

	deleted, err := svc.ClearAll(context.Background(), group.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
