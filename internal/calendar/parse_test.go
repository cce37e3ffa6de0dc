package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timedICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:evt-1@test
DTSTART:20240603T140000Z
DTEND:20240603T153000Z
SUMMARY:Rehearsal clash
END:VEVENT
BEGIN:VEVENT
UID:evt-2@test
DTSTART:20240610T090000Z
DTEND:20240610T100000Z
SUMMARY:Outside range
END:VEVENT
END:VCALENDAR
`

const allDayICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:allday-1@test
DTSTART;VALUE=DATE:20240604
DTEND;VALUE=DATE:20240605
SUMMARY:Travel day
END:VEVENT
END:VCALENDAR
`

const allDayNoEndICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:allday-2@test
DTSTART;VALUE=DATE:20240604
SUMMARY:No DTEND
END:VEVENT
END:VCALENDAR
`

func weekRange() (time.Time, time.Time) {
	return time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
}

func TestParseBusyEventsTimed(t *testing.T) {
	from, to := weekRange()

	events, err := ParseBusyEvents([]byte(timedICS), from, to)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "evt-1@test", events[0].UID)
	assert.Equal(t, time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC), events[0].Start)
	assert.Equal(t, time.Date(2024, 6, 3, 15, 30, 0, 0, time.UTC), events[0].End)
	assert.False(t, events[0].AllDay)
}

func TestParseBusyEventsAllDay(t *testing.T) {
	from, to := weekRange()

	events, err := ParseBusyEvents([]byte(allDayICS), from, to)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, events[0].AllDay)
	assert.Equal(t, 24*time.Hour, events[0].End.Sub(events[0].Start))
}

func TestParseBusyEventsAllDayWithoutEnd(t *testing.T) {
	from, to := weekRange()

	events, err := ParseBusyEvents([]byte(allDayNoEndICS), from, to)
	require.NoError(t, err)
	require.Len(t, events, 1)

	// Без DTEND событие на весь день занимает сутки
	assert.True(t, events[0].AllDay)
	assert.Equal(t, 24*time.Hour, events[0].End.Sub(events[0].Start))
}

func TestParseBusyEventsRangeClipping(t *testing.T) {
	// Диапазон не пересекает ни одно событие
	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	events, err := ParseBusyEvents([]byte(timedICS), from, to)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseBusyEventsEmptyBody(t *testing.T) {
	from, to := weekRange()
	_, err := ParseBusyEvents(nil, from, to)
	assert.Error(t, err)
}

func TestParseBusyEventsGarbage(t *testing.T) {
	from, to := weekRange()
	_, err := ParseBusyEvents([]byte("not an ics file"), from, to)
	assert.Error(t, err)
}
