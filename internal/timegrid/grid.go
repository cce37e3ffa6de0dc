package timegrid

import (
	"fmt"
	"iter"
	"time"
)

// Поддерживаемые гранулярности слотов
const (
	GranularityHalfHour = 30
	GranularityHour     = 60

	DaysPerWeek = 7
)

// Grid описывает дискретизацию недели на слоты фиксированной длины
// внутри окна [StartHour, EndHour). Часы отсчитываются от полуночи,
// EndHour может превышать 24 для слотов "после полуночи"
// (5-29 = с 05:00 до 05:00 следующего дня).
type Grid struct {
	StartHour   int
	EndHour     int
	SlotMinutes int
}

// Slot - адресуемый слот внутри недели. Day: 0 = понедельник, 6 = воскресенье.
type Slot struct {
	Day    int
	Hour   int
	Minute int
}

// Validate проверяет параметры сетки
func (g Grid) Validate() error {
	if g.SlotMinutes != GranularityHalfHour && g.SlotMinutes != GranularityHour {
		return fmt.Errorf("slot minutes must be 30 or 60, got %d", g.SlotMinutes)
	}
	if g.StartHour < 0 || g.StartHour > 23 {
		return fmt.Errorf("start hour out of range: %d", g.StartHour)
	}
	if g.EndHour > 48 {
		return fmt.Errorf("end hour out of range: %d", g.EndHour)
	}
	if g.StartHour >= g.EndHour {
		return fmt.Errorf("start hour %d must be before end hour %d", g.StartHour, g.EndHour)
	}
	return nil
}

// SlotsPerDay возвращает количество слотов в дневном окне
func (g Grid) SlotsPerDay() int {
	return (g.EndHour - g.StartHour) * 60 / g.SlotMinutes
}

// SlotsPerWeek возвращает количество слотов в неделе
func (g Grid) SlotsPerWeek() int {
	return DaysPerWeek * g.SlotsPerDay()
}

// SlotsForDay перечисляет слоты одного дня сверху вниз.
// Последовательность ленивая и перезапускаемая.
func (g Grid) SlotsForDay(day int) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for i := 0; i < g.SlotsPerDay(); i++ {
			total := g.StartHour*60 + i*g.SlotMinutes
			if !yield(Slot{Day: day, Hour: total / 60, Minute: total % 60}) {
				return
			}
		}
	}
}

// SlotsForWeek перечисляет все слоты недели: понедельник-воскресенье,
// внутри дня по возрастанию времени. Ровно SlotsPerWeek() элементов.
func (g Grid) SlotsForWeek() iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for day := 0; day < DaysPerWeek; day++ {
			for slot := range g.SlotsForDay(day) {
				if !yield(slot) {
					return
				}
			}
		}
	}
}

// SlotBounds возвращает (start, end) слота, начинающегося в hour:minute
// дня dayDate. Перенос минут обрабатывается явно: слот :30 при
// получасовой сетке заканчивается в :00 следующего часа, час >= 24
// попадает на следующий календарный день. time.Date нормализует
// переполнение полей, что соответствует wall-clock арифметике.
func (g Grid) SlotBounds(dayDate time.Time, hour, minute int) (time.Time, time.Time) {
	y, m, d := dayDate.Date()
	loc := dayDate.Location()
	start := time.Date(y, m, d, hour, minute, 0, 0, loc)
	end := time.Date(y, m, d, hour, minute+g.SlotMinutes, 0, 0, loc)
	return start, end
}

// DayBounds возвращает границы всего дневного окна дня dayDate
func (g Grid) DayBounds(dayDate time.Time) (time.Time, time.Time) {
	y, m, d := dayDate.Date()
	loc := dayDate.Location()
	start := time.Date(y, m, d, g.StartHour, 0, 0, 0, loc)
	end := time.Date(y, m, d, g.EndHour, 0, 0, 0, loc)
	return start, end
}

// StartOfWeek возвращает полночь понедельника недели, содержащей t
func StartOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// DaysOfWeek возвращает 7 дней недели, содержащей anchor, начиная с понедельника
func DaysOfWeek(anchor time.Time) []time.Time {
	start := StartOfWeek(anchor)
	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// MonthGrid возвращает 42 дня (6 недель) месячной сетки для месяца,
// содержащего anchor, начиная с понедельника недели первого числа
func MonthGrid(anchor time.Time) []time.Time {
	y, m, _ := anchor.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, anchor.Location())
	start := StartOfWeek(first)
	days := make([]time.Time, 6*DaysPerWeek)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}
