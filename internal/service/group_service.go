package service

import (
	"context"
	"fmt"
	"time"

	"bandsync/internal/model"
	"bandsync/internal/repository/base"
	"bandsync/internal/schedule"
	"bandsync/internal/timegrid"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Дефолтное окно отображения новой группы: 05:00 - 05:00 следующего дня
const (
	defaultStartHour   = 5
	defaultEndHour     = 29
	defaultSlotMinutes = timegrid.GranularityHalfHour
)

type GroupService struct {
	groupRepo  GroupStore
	memberRepo MemberStore
	availRepo  AvailabilityStore
	eventRepo  PracticeEventStore
	busyRepo   BusySlotStore
	logger     *zap.Logger
}

func NewGroupService(
	groupRepo GroupStore,
	memberRepo MemberStore,
	availRepo AvailabilityStore,
	eventRepo PracticeEventStore,
	busyRepo BusySlotStore,
	logger *zap.Logger,
) *GroupService {
	return &GroupService{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		availRepo:  availRepo,
		eventRepo:  eventRepo,
		busyRepo:   busyRepo,
		logger:     logger,
	}
}

// Create создаёт группу; создатель становится администратором.
// Группа и membership пишутся в одной транзакции.
func (s *GroupService) Create(ctx context.Context, userID uuid.UUID, name string) (*model.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}

	code, err := generateInviteCode(ctx, s.groupRepo.CodeExists)
	if err != nil {
		return nil, err
	}

	group := &model.Group{
		Name:        name,
		InviteCode:  code,
		CreatedBy:   &userID,
		StartHour:   defaultStartHour,
		EndHour:     defaultEndHour,
		SlotMinutes: defaultSlotMinutes,
	}

	if err := s.groupRepo.CreateWithOwner(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	s.logger.Info("Group created",
		zap.String("group_id", group.ID.String()),
		zap.String("name", name),
		zap.String("owner_id", userID.String()))

	return group, nil
}

// JoinByCode вступает в группу по инвайт-коду. Повторное вступление -
// различимая пользовательская ошибка, не generic-сбой.
func (s *GroupService) JoinByCode(ctx context.Context, userID uuid.UUID, code string) (*model.Group, error) {
	group, err := s.groupRepo.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find group by code: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	membership := &model.Membership{
		GroupID: group.ID,
		UserID:  userID,
		Role:    model.RoleMember,
	}

	if err := s.memberRepo.Add(ctx, membership); err != nil {
		if base.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("join group: %w", err)
	}

	s.logger.Info("Member joined group",
		zap.String("group_id", group.ID.String()),
		zap.String("user_id", userID.String()))

	return group, nil
}

// Leave выходит из группы. Когда уходит последний участник,
// группа удаляется автоматически.
func (s *GroupService) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}

	if err := s.memberRepo.Remove(ctx, groupID, userID); err != nil {
		return fmt.Errorf("leave group: %w", err)
	}

	count, err := s.memberRepo.CountByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("count remaining members: %w", err)
	}

	if count == 0 {
		if err := s.groupRepo.Delete(ctx, groupID); err != nil {
			return fmt.Errorf("delete empty group: %w", err)
		}
		s.logger.Info("Empty group deleted", zap.String("group_id", groupID.String()))
	}

	return nil
}

// Delete удаляет группу. Разрешено только владельцу.
func (s *GroupService) Delete(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return ErrGroupNotFound
	}

	if !group.IsOwnedBy(userID) {
		return ErrNotOwner
	}

	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	s.logger.Info("Group deleted",
		zap.String("group_id", groupID.String()),
		zap.String("owner_id", userID.String()))

	return nil
}

// UpdateWindow меняет окно отображения и гранулярность слотов группы
func (s *GroupService) UpdateWindow(ctx context.Context, groupID, userID uuid.UUID, startHour, endHour, slotMinutes int) error {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}

	grid := timegrid.Grid{StartHour: startHour, EndHour: endHour, SlotMinutes: slotMinutes}
	if err := grid.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}

	if err := s.groupRepo.UpdateWindow(ctx, groupID, startHour, endHour, slotMinutes); err != nil {
		return fmt.Errorf("update window: %w", err)
	}

	return nil
}

// Get возвращает группу, проверив членство запрашивающего
func (s *GroupService) Get(ctx context.Context, groupID, userID uuid.UUID) (*model.Group, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	return group, nil
}

// ListForUser возвращает группы пользователя
func (s *GroupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Group, error) {
	return s.groupRepo.ListByUserID(ctx, userID)
}

// Members возвращает участников группы с профилями
func (s *GroupService) Members(ctx context.Context, groupID, userID uuid.UUID) ([]*model.Member, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.memberRepo.ListByGroup(ctx, groupID)
}

// Overview - всё, что нужно клиенту для недельного вида группы:
// отметки, practice events и busy-слоты всех участников за неделю
type Overview struct {
	Group   *model.Group          `json:"group"`
	Members []*model.Member       `json:"members"`
	Marks   []model.Availability  `json:"marks"`
	Events  []model.PracticeEvent `json:"events"`
	Busy    []model.BusySlot      `json:"busy"`
	Week    []time.Time           `json:"week"`
}

// Overview собирает данные недельного вида одной выборкой на таблицу
func (s *GroupService) Overview(ctx context.Context, groupID, userID uuid.UUID, anchor time.Time) (*Overview, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	week := timegrid.DaysOfWeek(anchor)
	grid := timegrid.Grid{StartHour: group.StartHour, EndHour: group.EndHour, SlotMinutes: group.SlotMinutes}
	from, _ := grid.DayBounds(week[0])
	_, to := grid.DayBounds(week[len(week)-1])

	members, err := s.memberRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	marks, err := s.availRepo.ListByGroupRange(ctx, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}

	events, err := s.eventRepo.ListByGroupRange(ctx, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list practice events: %w", err)
	}

	memberIDs := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}

	busy, err := s.busyRepo.ListByUserIDs(ctx, memberIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("list busy slots: %w", err)
	}

	return &Overview{
		Group:   group,
		Members: members,
		Marks:   marks,
		Events:  events,
		Busy:    busy,
		Week:    week,
	}, nil
}

// DaySummary - счёт одного дня месячной сетки
type DaySummary struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// MonthSummary возвращает 42 дня месячной сетки (6 недель с понедельника)
// с суммарным счётом отметок по каждому дню
func (s *GroupService) MonthSummary(ctx context.Context, groupID, userID uuid.UUID, anchor time.Time) ([]DaySummary, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	grid := timegrid.Grid{StartHour: group.StartHour, EndHour: group.EndHour, SlotMinutes: group.SlotMinutes}
	days := timegrid.MonthGrid(anchor)
	from, _ := grid.DayBounds(days[0])
	_, to := grid.DayBounds(days[len(days)-1])

	marks, err := s.availRepo.ListByGroupRange(ctx, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}

	out := make([]DaySummary, 0, len(days))
	for _, day := range days {
		out = append(out, DaySummary{
			Date:  day,
			Score: schedule.DailyScore(marks, grid, day),
		})
	}
	return out, nil
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID uuid.UUID) (*model.Membership, error) {
	membership, err := s.memberRepo.Get(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if membership == nil {
		return nil, ErrNotMember
	}
	return membership, nil
}
