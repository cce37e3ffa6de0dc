package service

import (
	"context"
	"fmt"
	"time"

	"bandsync/internal/model"
	"bandsync/internal/repository/base"
	"bandsync/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BulkResult - итог пакетного подтверждения: по каждому слоту
// фиксируем исход, частичный сбой не маскируется под полный успех
type BulkResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type PracticeService struct {
	groupRepo  GroupStore
	memberRepo MemberStore
	eventRepo  PracticeEventStore
	busyRepo   BusySlotStore
	announcer  Announcer
	logger     *zap.Logger
}

func NewPracticeService(
	groupRepo GroupStore,
	memberRepo MemberStore,
	eventRepo PracticeEventStore,
	busyRepo BusySlotStore,
	announcer Announcer,
	logger *zap.Logger,
) *PracticeService {
	return &PracticeService{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		eventRepo:  eventRepo,
		busyRepo:   busyRepo,
		announcer:  announcer,
		logger:     logger,
	}
}

// Toggle переключает подтверждённую репетицию на одном слоте.
// Снятие существующей репетиции разрешено даже поверх busy-интервала,
// добавление на занятый слот запрещено. Гонка двух подтверждений
// одного слота схлопывается в успех через unique violation.
func (s *PracticeService) Toggle(ctx context.Context, groupID, userID uuid.UUID, start, end time.Time) (confirmed bool, err error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return false, err
	}

	existing, err := s.eventRepo.GetByStart(ctx, groupID, start)
	if err != nil {
		return false, fmt.Errorf("get practice event: %w", err)
	}

	if existing != nil {
		if _, err := s.eventRepo.DeleteByStart(ctx, groupID, start); err != nil {
			return false, fmt.Errorf("delete practice event: %w", err)
		}
		return false, nil
	}

	blocked, err := s.slotBlocked(ctx, groupID, start, end)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, ErrSlotBusy
	}

	event := &model.PracticeEvent{
		GroupID:   groupID,
		StartTime: start,
		EndTime:   end,
		CreatedBy: &userID,
	}
	if err := s.eventRepo.Insert(ctx, event); err != nil {
		// Кто-то подтвердил слот параллельно, результат тот же
		if base.IsUniqueViolation(err) {
			return true, nil
		}
		return false, fmt.Errorf("insert practice event: %w", err)
	}

	return true, nil
}

// BulkUpdate подтверждает или снимает репетиции на пачке слотов.
// Доступно только администраторам группы. Каждый слот обрабатывается
// независимо, сбой одного не откатывает остальные.
func (s *PracticeService) BulkUpdate(ctx context.Context, groupID, userID uuid.UUID, mode schedule.DragMode, slots []schedule.Interval) (BulkResult, error) {
	membership, err := s.requireMember(ctx, groupID, userID)
	if err != nil {
		return BulkResult{}, err
	}
	if !membership.IsAdmin() {
		return BulkResult{}, ErrNotAdmin
	}

	result := BulkResult{Attempted: len(slots)}
	var confirmed []schedule.Interval

	for _, sl := range slots {
		if mode == schedule.DragRemove {
			if _, err := s.eventRepo.DeleteByStart(ctx, groupID, sl.Start); err != nil {
				s.logger.Warn("⚠️ Failed to remove practice event",
					zap.String("group_id", groupID.String()),
					zap.Time("start", sl.Start),
					zap.Error(err))
				result.Failed++
				continue
			}
			result.Succeeded++
			continue
		}

		event := &model.PracticeEvent{
			GroupID:   groupID,
			StartTime: sl.Start,
			EndTime:   sl.End,
			CreatedBy: &userID,
		}
		if err := s.eventRepo.Insert(ctx, event); err != nil {
			// Дубликат означает, что слот уже подтверждён
			if base.IsUniqueViolation(err) {
				result.Succeeded++
				continue
			}
			s.logger.Warn("⚠️ Failed to confirm practice event",
				zap.String("group_id", groupID.String()),
				zap.Time("start", sl.Start),
				zap.Error(err))
			result.Failed++
			continue
		}
		result.Succeeded++
		confirmed = append(confirmed, sl)
	}

	if mode == schedule.DragAdd && len(confirmed) > 0 && s.announcer != nil {
		group, err := s.groupRepo.GetByID(ctx, groupID)
		if err == nil && group != nil {
			runs := schedule.MergeContiguous(confirmed)
			s.announcer.AnnouncePractice(ctx, group.Name, runs)
		}
	}

	s.logger.Info("Bulk practice update",
		zap.String("group_id", groupID.String()),
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	return result, nil
}

// ListRange возвращает подтверждённые репетиции группы за период
func (s *PracticeService) ListRange(ctx context.Context, groupID, userID uuid.UUID, from, to time.Time) ([]model.PracticeEvent, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByGroupRange(ctx, groupID, from, to)
}

// MergedRuns возвращает подтверждённые репетиции за период, склеенные
// в непрерывные интервалы ("19:00-21:00" вместо четырёх слотов)
func (s *PracticeService) MergedRuns(ctx context.Context, groupID, userID uuid.UUID, from, to time.Time) ([]schedule.Interval, error) {
	events, err := s.ListRange(ctx, groupID, userID, from, to)
	if err != nil {
		return nil, err
	}

	intervals := make([]schedule.Interval, 0, len(events))
	for _, e := range events {
		intervals = append(intervals, schedule.Interval{Start: e.StartTime, End: e.EndTime})
	}
	return schedule.MergeContiguous(intervals), nil
}

// ClearAll снимает все репетиции группы. Разрешено только владельцу.
func (s *PracticeService) ClearAll(ctx context.Context, groupID, userID uuid.UUID) (int64, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return 0, ErrGroupNotFound
	}
	if !group.IsOwnedBy(userID) {
		return 0, ErrNotOwner
	}

	deleted, err := s.eventRepo.DeleteAllByGroup(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("clear practice events: %w", err)
	}

	s.logger.Info("All practice events cleared",
		zap.String("group_id", groupID.String()),
		zap.Int64("deleted", deleted))

	return deleted, nil
}

// slotBlocked проверяет пересечение слота с busy-интервалами
// любого участника группы
func (s *PracticeService) slotBlocked(ctx context.Context, groupID uuid.UUID, start, end time.Time) (bool, error) {
	memberIDs, err := s.memberRepo.ListUserIDs(ctx, groupID)
	if err != nil {
		return false, fmt.Errorf("list member ids: %w", err)
	}

	busy, err := s.busyRepo.ListByUserIDs(ctx, memberIDs, start, end)
	if err != nil {
		return false, fmt.Errorf("list busy slots: %w", err)
	}

	return schedule.BlockedByBusy(busy, start, end), nil
}

func (s *PracticeService) requireMember(ctx context.Context, groupID, userID uuid.UUID) (*model.Membership, error) {
	membership, err := s.memberRepo.Get(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if membership == nil {
		return nil, ErrNotMember
	}
	return membership, nil
}
