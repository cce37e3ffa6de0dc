package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bandsync/internal/calendar"
	"bandsync/internal/model"
	"bandsync/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncResult - итог синхронизации busy-слотов из внешних календарей
type SyncResult struct {
	Synced        bool `json:"synced"`
	Count         int  `json:"count"`
	HasCredential bool `json:"has_credential"`
	Partial       bool `json:"partial"`
}

type CalendarService struct {
	feedRepo CalendarFeedStore
	busyRepo BusySlotStore
	source   BusySource
	logger   *zap.Logger
}

func NewCalendarService(
	feedRepo CalendarFeedStore,
	busyRepo BusySlotStore,
	source BusySource,
	logger *zap.Logger,
) *CalendarService {
	return &CalendarService{
		feedRepo: feedRepo,
		busyRepo: busyRepo,
		source:   source,
		logger:   logger,
	}
}

// AddFeed привязывает ICS-фид к пользователю
func (s *CalendarService) AddFeed(ctx context.Context, userID uuid.UUID, name, url string) (*model.CalendarFeed, error) {
	if url == "" {
		return nil, fmt.Errorf("feed url is required")
	}

	feed := &model.CalendarFeed{
		UserID: userID,
		Name:   name,
		URL:    url,
	}
	if err := s.feedRepo.Add(ctx, feed); err != nil {
		return nil, fmt.Errorf("add calendar feed: %w", err)
	}

	s.logger.Info("Calendar feed added",
		zap.String("user_id", userID.String()),
		zap.String("feed_id", feed.ID.String()))

	return feed, nil
}

// ListFeeds возвращает фиды пользователя
func (s *CalendarService) ListFeeds(ctx context.Context, userID uuid.UUID) ([]model.CalendarFeed, error) {
	return s.feedRepo.ListByUser(ctx, userID)
}

// DeleteFeed отвязывает фид пользователя
func (s *CalendarService) DeleteFeed(ctx context.Context, userID, feedID uuid.UUID) error {
	if err := s.feedRepo.Delete(ctx, userID, feedID); err != nil {
		return fmt.Errorf("delete calendar feed: %w", err)
	}
	return nil
}

// SyncBusy перечитывает внешние календари и замещает busy-слоты
// пользователя в диапазоне [from, to) одной транзакцией. Токен
// выдаётся до похода в сеть, поэтому ответ медленной ранней
// синхронизации не затирает результат более поздней.
func (s *CalendarService) SyncBusy(ctx context.Context, userID uuid.UUID, from, to time.Time) (SyncResult, error) {
	feeds, err := s.feedRepo.ListByUser(ctx, userID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list calendar feeds: %w", err)
	}
	if len(feeds) == 0 {
		return SyncResult{Synced: false, HasCredential: false}, nil
	}

	token, err := s.busyRepo.NextSyncToken(ctx, userID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("issue sync token: %w", err)
	}

	clientFeeds := make([]calendar.Feed, 0, len(feeds))
	for _, f := range feeds {
		clientFeeds = append(clientFeeds, calendar.Feed{ID: f.ID.String(), Name: f.Name, URL: f.URL})
	}

	result := s.source.ListBusyEvents(ctx, clientFeeds, from, to)

	slots := make([]model.BusySlot, 0, len(result.Events))
	for _, ev := range result.Events {
		slots = append(slots, model.BusySlot{
			UserID:    userID,
			StartTime: ev.Start,
			EndTime:   ev.End,
			SyncToken: token,
		})
	}

	if err := s.busyRepo.ReplaceRange(ctx, userID, from, to, slots, token); err != nil {
		if errors.Is(err, repository.ErrStaleSyncToken) {
			// Пришли позже более свежей синхронизации, наш снимок устарел
			s.logger.Info("🔄 Stale calendar sync discarded",
				zap.String("user_id", userID.String()),
				zap.Int64("token", token))
			return SyncResult{}, ErrStaleSync
		}
		return SyncResult{}, fmt.Errorf("replace busy slots: %w", err)
	}

	s.logger.Info("✅ Calendar busy slots synced",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(slots)),
		zap.Bool("partial", result.Partial))

	return SyncResult{
		Synced:        true,
		Count:         len(slots),
		HasCredential: true,
		Partial:       result.Partial,
	}, nil
}

// FetchEvents возвращает события календарей пользователя за период
// без записи в базу, для отображения "моих событий" в сетке
func (s *CalendarService) FetchEvents(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]calendar.BusyEvent, bool, error) {
	feeds, err := s.feedRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("list calendar feeds: %w", err)
	}
	if len(feeds) == 0 {
		return nil, false, nil
	}

	clientFeeds := make([]calendar.Feed, 0, len(feeds))
	for _, f := range feeds {
		clientFeeds = append(clientFeeds, calendar.Feed{ID: f.ID.String(), Name: f.Name, URL: f.URL})
	}

	result := s.source.ListBusyEvents(ctx, clientFeeds, from, to)
	return result.Events, result.Partial, nil
}

// PurgeStaleBusySlots удаляет busy-слоты, закончившиеся раньше
// olderThan назад. Вызывается фоновым планировщиком.
func (s *CalendarService) PurgeStaleBusySlots(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	deleted, err := s.busyRepo.DeleteEndedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge busy slots: %w", err)
	}

	return deleted, nil
}
