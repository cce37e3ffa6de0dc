package service

import (
	"context"
	"time"

	"bandsync/internal/calendar"
	"bandsync/internal/model"
	"bandsync/internal/schedule"

	"github.com/google/uuid"
)

// Контракты хранилищ, которые реализуют pgx-репозитории.
// Сервисы принимают интерфейсы, чтобы логику можно было проверять
// на in-memory реализациях.

type UserStore interface {
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GroupStore interface {
	CreateWithOwner(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	GetByInviteCode(ctx context.Context, code string) (*model.Group, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Group, error)
	UpdateWindow(ctx context.Context, id uuid.UUID, startHour, endHour, slotMinutes int) error
	Delete(ctx context.Context, id uuid.UUID) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

type MemberStore interface {
	Add(ctx context.Context, m *model.Membership) error
	Get(ctx context.Context, groupID, userID uuid.UUID) (*model.Membership, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Member, error)
	Remove(ctx context.Context, groupID, userID uuid.UUID) error
	CountByGroup(ctx context.Context, groupID uuid.UUID) (int, error)
	ListUserIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

type AvailabilityStore interface {
	Upsert(ctx context.Context, a *model.Availability) error
	UpsertBatch(ctx context.Context, marks []*model.Availability) error
	Delete(ctx context.Context, userID, groupID uuid.UUID, start time.Time) error
	DeleteRange(ctx context.Context, userID, groupID uuid.UUID, from, to time.Time) error
	DeleteIn(ctx context.Context, userID, groupID uuid.UUID, starts []time.Time) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Availability, error)
	ListByGroupRange(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]model.Availability, error)
}

type BusySlotStore interface {
	ReplaceRange(ctx context.Context, userID uuid.UUID, from, to time.Time, slots []model.BusySlot, token int64) error
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) ([]model.BusySlot, error)
	NextSyncToken(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PracticeEventStore interface {
	Insert(ctx context.Context, e *model.PracticeEvent) error
	GetByStart(ctx context.Context, groupID uuid.UUID, start time.Time) (*model.PracticeEvent, error)
	DeleteByStart(ctx context.Context, groupID uuid.UUID, start time.Time) (int64, error)
	ListByGroupRange(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]model.PracticeEvent, error)
	DeleteAllByGroup(ctx context.Context, groupID uuid.UUID) (int64, error)
}

type CalendarFeedStore interface {
	Add(ctx context.Context, feed *model.CalendarFeed) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CalendarFeed, error)
	Delete(ctx context.Context, userID, feedID uuid.UUID) error
}

// BusySource - внешний read-only источник занятости (ICS-клиент)
type BusySource interface {
	ListBusyEvents(ctx context.Context, feeds []calendar.Feed, rangeStart, rangeEnd time.Time) calendar.Result
}

// Announcer уведомляет внешний канал о подтверждённых репетициях
type Announcer interface {
	AnnouncePractice(ctx context.Context, groupName string, runs []schedule.Interval)
}
