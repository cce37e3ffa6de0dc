package heatmap

import (
	"bytes"
	"image/color"
	"strconv"
	"time"

	"bandsync/internal/model"
	"bandsync/internal/schedule"
	"bandsync/internal/timegrid"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Константы размеров и отступов
const (
	imageWidth      = 1400
	imageHeight     = 900
	headerHeight    = 90
	leftLabelsWidth = 80
	legendWidth     = 140
	dayPaddingX     = 4
	cellPaddingY    = 1.0
	totalDaysInWeek = timegrid.DaysPerWeek
)

// Цветовая схема: жёлтая шкала доступности, серый для занятости,
// зелёный для подтверждённых репетиций
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 60}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{228, 228, 228, 255}

	availBaseColor  = color.RGBA{255, 214, 10, 255}  // Жёлтый, альфа по счёту
	busyColor       = color.RGBA{158, 158, 158, 200} // Серый для busy-интервалов
	confirmedColor  = color.RGBA{76, 175, 80, 230}   // Зелёный для репетиций
	legendTextColor = color.RGBA{90, 95, 100, 220}
)

// WeekData - входные данные недельной тепловой карты одной группы
type WeekData struct {
	Group  *model.Group
	Anchor time.Time
	Marks  []model.Availability
	Busy   []model.BusySlot
	Events []model.PracticeEvent
}

// Render рисует тепловую карту недели: интенсивность жёлтого
// пропорциональна суммарному приоритету отметок на слоте, busy-слоты
// участников серые, подтверждённые репетиции зелёные
func Render(data WeekData) ([]byte, error) {
	grid := timegrid.Grid{
		StartHour:   data.Group.StartHour,
		EndHour:     data.Group.EndHour,
		SlotMinutes: data.Group.SlotMinutes,
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	week := timegrid.DaysOfWeek(data.Anchor)
	today := normalizeToDay(time.Now())

	maxScore := maxSlotScore(data.Marks, grid, week)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(grid.SlotsPerDay())

	drawHeader(dc, data.Group.Name, week)
	drawHourLabels(dc, grid, cellHeight)

	eventIntervals := make([]schedule.Interval, 0, len(data.Events))
	for _, ev := range data.Events {
		eventIntervals = append(eventIntervals, schedule.Interval{Start: ev.StartTime, End: ev.EndTime})
	}

	for dayIndex, day := range week {
		x := float64(leftLabelsWidth + dayIndex*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, dayIndex, day.Equal(today))
		drawDayHeader(dc, day, x, dayWidth)

		slotIdx := 0
		for slot := range grid.SlotsForDay(dayIndex) {
			slotStart, slotEnd := grid.SlotBounds(day, slot.Hour, slot.Minute)
			cellY := y + float64(slotIdx)*cellHeight
			drawSlotCell(dc, x, cellY, dayWidth, cellHeight, cellState{
				score:     schedule.ScoreForSlot(data.Marks, slotStart),
				maxScore:  maxScore,
				busy:      schedule.BlockedByBusy(data.Busy, slotStart, slotEnd),
				confirmed: schedule.BlockedByEvents(eventIntervals, slotStart, slotEnd),
			})
			slotIdx++
		}

		drawHourLines(dc, x, y, dayWidth, grid, cellHeight)
	}

	drawLegend(dc, dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type cellState struct {
	score     int
	maxScore  int
	busy      bool
	confirmed bool
}

// drawSlotCell рисует одну ячейку. Подтверждение перекрывает
// занятость, занятость перекрывает отметки.
func drawSlotCell(dc *gg.Context, x, y float64, dayWidth int, cellHeight float64, st cellState) {
	var fill color.Color
	switch {
	case st.confirmed:
		fill = confirmedColor
	case st.busy:
		fill = busyColor
	case st.score > 0:
		alpha := uint8(80 + 175*st.score/st.maxScore)
		fill = color.NRGBA{availBaseColor.R, availBaseColor.G, availBaseColor.B, alpha}
	default:
		return
	}

	dc.SetColor(fill)
	dc.DrawRectangle(
		x+dayPaddingX,
		y+cellPaddingY,
		float64(dayWidth)-dayPaddingX*2,
		cellHeight-cellPaddingY*2)
	dc.Fill()
}

// maxSlotScore находит максимальный счёт по всем слотам недели,
// чтобы нормировать интенсивность цвета
func maxSlotScore(marks []model.Availability, grid timegrid.Grid, week []time.Time) int {
	max := 1
	for dayIndex, day := range week {
		for slot := range grid.SlotsForDay(dayIndex) {
			slotStart, _ := grid.SlotBounds(day, slot.Hour, slot.Minute)
			if score := schedule.ScoreForSlot(marks, slotStart); score > max {
				max = score
			}
		}
	}
	return max
}

func normalizeToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func drawHeader(dc *gg.Context, groupName string, week []time.Time) {
	title := groupName + ": " + week[0].Format("02.01") + " - " + week[len(week)-1].Format("02.01.2006")
	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, float64(imageWidth)/2-w/2, float64(headerHeight)/3+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, grid timegrid.Grid, cellHeight float64) {
	dc.SetColor(hourLabelColor)

	slotIdx := 0
	for slot := range grid.SlotsForDay(0) {
		if slot.Minute == 0 {
			y := float64(headerHeight) + float64(slotIdx)*cellHeight
			dc.DrawStringAnchored(formatHourLabel(slot.Hour), float64(leftLabelsWidth)-10, y+cellHeight/2, 1, 0.5)
		}
		slotIdx++
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	if isToday {
		dc.SetColor(todayBgColor)
	} else if dayIndex%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, date time.Time, x float64, dayWidth int) {
	label := getWeekdayShort(date.Weekday()) + " " + date.Format("02.01")
	dc.SetColor(textColor)
	dc.DrawStringAnchored(label, x+float64(dayWidth)/2, float64(headerHeight)*2/3, 0.5, 0.5)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, grid timegrid.Grid, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	slotsPerHour := 60 / grid.SlotMinutes
	for i := 0; i <= grid.SlotsPerDay(); i += slotsPerHour {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func drawLegend(dc *gg.Context, dayWidth int) {
	legendX := float64(leftLabelsWidth + totalDaysInWeek*dayWidth + 10)
	legendY := float64(headerHeight) + 10

	legendItems := []struct {
		Label string
		Clr   color.Color
	}{
		{"Доступно", availBaseColor},
		{"Занято", busyColor},
		{"Репетиция", confirmedColor},
	}

	boxW := 20.0
	boxH := 14.0
	liY := legendY

	for _, item := range legendItems {
		dc.SetColor(item.Clr)
		dc.DrawRectangle(legendX, liY, boxW, boxH)
		dc.Fill()

		dc.SetColor(legendTextColor)
		dc.DrawStringAnchored(item.Label, legendX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}

// формат числа с двумя цифрами
func formatTwoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func formatHourLabel(h int) string {
	return formatTwoDigits(h%24) + ":00"
}

// короткие дни недели
func getWeekdayShort(weekday time.Weekday) string {
	weekdays := map[time.Weekday]string{
		time.Monday:    "Пн",
		time.Tuesday:   "Вт",
		time.Wednesday: "Ср",
		time.Thursday:  "Чт",
		time.Friday:    "Пт",
		time.Saturday:  "Сб",
		time.Sunday:    "Вс",
	}
	return weekdays[weekday]
}
