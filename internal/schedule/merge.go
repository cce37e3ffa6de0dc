package schedule

import "sort"

// Run - непрерывный ряд подтверждённых слотов для отображения
// ("14:00-17:00" вместо трёх строк по часу)
type Run = Interval

// MergeContiguous сортирует интервалы по началу и склеивает соседние,
// где end[i] == start[i+1]. Идемпотентна. Используется только для
// читабельных сводок, не для логики конфликтов.
func MergeContiguous(events []Interval) []Interval {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]Interval, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if current.End.Equal(next.Start) {
			current.End = next.End
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}
