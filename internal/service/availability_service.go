package service

import (
	"context"
	"fmt"
	"time"

	"bandsync/internal/model"
	"bandsync/internal/schedule"
	"bandsync/internal/timegrid"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService struct {
	groupRepo  GroupStore
	memberRepo MemberStore
	availRepo  AvailabilityStore
	busyRepo   BusySlotStore
	logger     *zap.Logger
}

func NewAvailabilityService(
	groupRepo GroupStore,
	memberRepo MemberStore,
	availRepo AvailabilityStore,
	busyRepo BusySlotStore,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		availRepo:  availRepo,
		busyRepo:   busyRepo,
		logger:     logger,
	}
}

// Toggle переключает отметку пользователя на одном слоте.
// Постановка отметки поверх busy-интервала из календаря запрещена,
// снятие разрешено всегда. Запись атомарна (upsert), параллельные
// переключения не теряют чужих отметок.
func (s *AvailabilityService) Toggle(ctx context.Context, groupID, userID uuid.UUID, start, end time.Time, priority int) (added bool, err error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return false, err
	}

	existing, err := s.availRepo.ListByGroupRange(ctx, groupID, start, end)
	if err != nil {
		return false, fmt.Errorf("list marks: %w", err)
	}

	var marked bool
	for _, a := range existing {
		if a.UserID == userID && a.StartTime.Equal(start) {
			marked = true
			break
		}
	}

	if marked {
		if err := s.availRepo.Delete(ctx, userID, groupID, start); err != nil {
			return false, fmt.Errorf("delete mark: %w", err)
		}
		return false, nil
	}

	// Занятость проверяем по собственному календарю пользователя
	busy, err := s.busyRepo.ListByUserIDs(ctx, []uuid.UUID{userID}, start, end)
	if err != nil {
		return false, fmt.Errorf("list busy slots: %w", err)
	}
	if schedule.BlockedByBusy(busy, start, end) {
		return false, ErrSlotBusy
	}

	mark := &model.Availability{
		UserID:    userID,
		GroupID:   groupID,
		StartTime: start,
		EndTime:   end,
		Priority:  priority,
	}
	if err := s.availRepo.Upsert(ctx, mark); err != nil {
		return false, fmt.Errorf("upsert mark: %w", err)
	}

	return true, nil
}

// BulkDay ставит или снимает отметки на все слоты дня в окне группы.
// Постановка идёт безусловно на каждый слот, включая занятые,
// так ведёт себя и одиночный bulk в настройках.
func (s *AvailabilityService) BulkDay(ctx context.Context, groupID, userID uuid.UUID, day time.Time, add bool, priority int) error {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return ErrGroupNotFound
	}

	grid := timegrid.Grid{StartHour: group.StartHour, EndHour: group.EndHour, SlotMinutes: group.SlotMinutes}
	dayStart, dayEnd := grid.DayBounds(day)

	if !add {
		if err := s.availRepo.DeleteRange(ctx, userID, groupID, dayStart, dayEnd); err != nil {
			return fmt.Errorf("clear day: %w", err)
		}
		return nil
	}

	var marks []*model.Availability
	for slot := range grid.SlotsForDay(0) {
		slotStart, slotEnd := grid.SlotBounds(day, slot.Hour, slot.Minute)
		marks = append(marks, &model.Availability{
			UserID:    userID,
			GroupID:   groupID,
			StartTime: slotStart,
			EndTime:   slotEnd,
			Priority:  priority,
		})
	}

	if err := s.availRepo.UpsertBatch(ctx, marks); err != nil {
		return fmt.Errorf("upsert day marks: %w", err)
	}

	s.logger.Info("Bulk day marks applied",
		zap.String("group_id", groupID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("slots", len(marks)))

	return nil
}

// UpdateRange применяет результат drag-выделения: пачку интервалов
// в режиме add или remove одной операцией
func (s *AvailabilityService) UpdateRange(ctx context.Context, groupID, userID uuid.UUID, mode schedule.DragMode, slots []schedule.Interval, priority int) error {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}

	if mode == schedule.DragRemove {
		starts := make([]time.Time, 0, len(slots))
		for _, sl := range slots {
			starts = append(starts, sl.Start)
		}
		if err := s.availRepo.DeleteIn(ctx, userID, groupID, starts); err != nil {
			return fmt.Errorf("delete marks: %w", err)
		}
		return nil
	}

	marks := make([]*model.Availability, 0, len(slots))
	for _, sl := range slots {
		marks = append(marks, &model.Availability{
			UserID:    userID,
			GroupID:   groupID,
			StartTime: sl.Start,
			EndTime:   sl.End,
			Priority:  priority,
		})
	}

	if err := s.availRepo.UpsertBatch(ctx, marks); err != nil {
		return fmt.Errorf("upsert marks: %w", err)
	}

	return nil
}

// ListRange возвращает отметки всей группы за период
func (s *AvailabilityService) ListRange(ctx context.Context, groupID, userID uuid.UUID, from, to time.Time) ([]model.Availability, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.availRepo.ListByGroupRange(ctx, groupID, from, to)
}

func (s *AvailabilityService) requireMember(ctx context.Context, groupID, userID uuid.UUID) (*model.Membership, error) {
	membership, err := s.memberRepo.Get(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if membership == nil {
		return nil, ErrNotMember
	}
	return membership, nil
}
