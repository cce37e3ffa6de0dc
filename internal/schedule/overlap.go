package schedule

import (
	"time"

	"bandsync/internal/model"

	"github.com/google/uuid"
)

// Interval - полуоткрытый интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps проверяет пересечение полуоткрытых интервалов.
// Касание границ пересечением не считается: end == slotStart или
// start == slotEnd допускает бронирования впритык.
func Overlaps(start, end, slotStart, slotEnd time.Time) bool {
	return start.Before(slotEnd) && end.After(slotStart)
}

// BlockedByBusy - true, если слот пересекается с любым busy-интервалом
// любого участника группы
func BlockedByBusy(busy []model.BusySlot, slotStart, slotEnd time.Time) bool {
	for _, b := range busy {
		if Overlaps(b.StartTime, b.EndTime, slotStart, slotEnd) {
			return true
		}
	}
	return false
}

// BlockedByOthers - тот же тест, но только по busy-интервалам
// других участников (свои исключаются)
func BlockedByOthers(busy []model.BusySlot, viewerID uuid.UUID, slotStart, slotEnd time.Time) bool {
	for _, b := range busy {
		if b.UserID == viewerID {
			continue
		}
		if Overlaps(b.StartTime, b.EndTime, slotStart, slotEnd) {
			return true
		}
	}
	return false
}

// BlockedByEvents проверяет слот против свежевыгруженных событий
// собственного календаря зрителя (не персистятся на каждый просмотр)
func BlockedByEvents(events []Interval, slotStart, slotEnd time.Time) bool {
	for _, e := range events {
		if Overlaps(e.Start, e.End, slotStart, slotEnd) {
			return true
		}
	}
	return false
}
