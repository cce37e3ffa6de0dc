package main

import (
	"log"
	"os"
	"time"

	"bandsync/internal/heatmap"
	"bandsync/internal/model"
	"bandsync/internal/timegrid"

	"github.com/google/uuid"
)

// Утилита для локального просмотра тепловой карты: генерирует PNG
// с тестовыми данными и пишет его в heatmap_preview.png
func main() {
	groupID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()

	group := &model.Group{
		ID:          groupID,
		Name:        "Garage Band",
		StartHour:   5,
		EndHour:     29,
		SlotMinutes: timegrid.GranularityHalfHour,
	}

	anchor := time.Now()
	monday := timegrid.StartOfWeek(anchor)

	slotAt := func(dayOffset, hour, minute int) (time.Time, time.Time) {
		grid := timegrid.Grid{StartHour: group.StartHour, EndHour: group.EndHour, SlotMinutes: group.SlotMinutes}
		return grid.SlotBounds(monday.AddDate(0, 0, dayOffset), hour, minute)
	}

	var marks []model.Availability
	for _, m := range []struct {
		user        uuid.UUID
		day, h, min int
	}{
		{userA, 0, 19, 0}, {userA, 0, 19, 30}, {userA, 0, 20, 0},
		{userB, 0, 19, 30}, {userB, 0, 20, 0}, {userB, 0, 20, 30},
		{userA, 2, 18, 0}, {userA, 2, 18, 30},
		{userB, 4, 21, 0},
	} {
		start, end := slotAt(m.day, m.h, m.min)
		marks = append(marks, model.Availability{
			UserID:    m.user,
			GroupID:   groupID,
			StartTime: start,
			EndTime:   end,
			Priority:  1,
		})
	}

	busyStart, _ := slotAt(1, 10, 0)
	_, busyEnd := slotAt(1, 12, 30)
	busy := []model.BusySlot{
		{UserID: userA, StartTime: busyStart, EndTime: busyEnd},
	}

	evStart, evEnd := slotAt(0, 19, 30)
	events := []model.PracticeEvent{
		{GroupID: groupID, StartTime: evStart, EndTime: evEnd},
	}

	img, err := heatmap.Render(heatmap.WeekData{
		Group:  group,
		Anchor: anchor,
		Marks:  marks,
		Busy:   busy,
		Events: events,
	})
	if err != nil {
		log.Fatalf("render heatmap: %v", err)
	}

	if err := os.WriteFile("heatmap_preview.png", img, 0o644); err != nil {
		log.Fatalf("write png: %v", err)
	}

	log.Printf("✅ heatmap_preview.png written (%d bytes)", len(img))
}
