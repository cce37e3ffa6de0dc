package schedule

import (
	"time"

	"bandsync/internal/model"
	"bandsync/internal/timegrid"

	"github.com/google/uuid"
)

// Агрегация отметок в групповое представление. Коллекции маленькие
// (участники x слоты недели), поэтому полный проход на каждый запрос
// дешевле любого инкрементального индекса.

// ScoreForSlot суммирует priority по отметкам, чей старт точно совпадает
// со стартом слота. Отметки всегда создаются выровненными по сетке,
// поэтому точное равенство безопасно (пересечение не проверяется).
func ScoreForSlot(marks []model.Availability, slotStart time.Time) int {
	score := 0
	for _, m := range marks {
		if m.StartTime.Equal(slotStart) {
			score += m.Priority
		}
	}
	return score
}

// SupporterCountForSlot считает уникальных участников с положительной
// отметкой на этом слоте
func SupporterCountForSlot(marks []model.Availability, slotStart time.Time) int {
	seen := make(map[uuid.UUID]struct{})
	for _, m := range marks {
		if m.Priority > 0 && m.StartTime.Equal(slotStart) {
			seen[m.UserID] = struct{}{}
		}
	}
	return len(seen)
}

// DailyScore суммирует ScoreForSlot по всем слотам дневного окна.
// Используется для закраски ячеек месячного вида.
func DailyScore(marks []model.Availability, grid timegrid.Grid, dayDate time.Time) int {
	total := 0
	for slot := range grid.SlotsForDay(0) {
		start, _ := grid.SlotBounds(dayDate, slot.Hour, slot.Minute)
		total += ScoreForSlot(marks, start)
	}
	return total
}
