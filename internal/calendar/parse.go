package calendar

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ParseBusyEvents разбирает ICS-содержимое в busy-интервалы,
// пересекающие [rangeStart, rangeEnd). События на весь день
// (DTSTART;VALUE=DATE) разворачиваются в интервал от полуночи до
// полуночи. Битые VEVENT пропускаются, не роняя разбор.
func ParseBusyEvents(body []byte, rangeStart, rangeEnd time.Time) ([]BusyEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var events []BusyEvent
	for _, ve := range cal.Events() {
		ev, ok := parseVEvent(ve)
		if !ok {
			continue
		}
		// Обрезаем до запрошенного диапазона (полуоткрытое пересечение)
		if !ev.Start.Before(rangeEnd) || !ev.End.After(rangeStart) {
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

func parseVEvent(ve *ical.VEvent) (BusyEvent, bool) {
	var ev BusyEvent

	if uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId); uidProp != nil {
		ev.UID = uidProp.Value
	}

	// Весь день: VALUE=DATE или значение без 'T'
	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		if params := dtStart.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				ev.AllDay = true
			}
		}
		if !strings.Contains(dtStart.Value, "T") {
			ev.AllDay = true
		}
	}

	start, err := ve.GetStartAt()
	if err != nil {
		if !ev.AllDay {
			return ev, false
		}
		start, err = ve.GetAllDayStartAt()
		if err != nil {
			return ev, false
		}
	}
	ev.Start = start

	end, err := ve.GetEndAt()
	if err != nil {
		if ev.AllDay {
			end, err = ve.GetAllDayEndAt()
		}
		if err != nil {
			// DTEND не обязателен: событие на весь день без него
			// занимает сутки, остальные считаем точечными
			if ev.AllDay {
				end = ev.Start.AddDate(0, 0, 1)
			} else {
				end = ev.Start
			}
		}
	}
	ev.End = end

	if !ev.End.After(ev.Start) {
		if ev.AllDay {
			ev.End = ev.Start.AddDate(0, 0, 1)
		} else {
			return ev, false
		}
	}

	return ev, true
}
