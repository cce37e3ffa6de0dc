package app

import (
	"context"
	"time"

	"bandsync/internal/service"

	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	calendarService *service.CalendarService
	logger          *zap.Logger
	stopChan        chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(calendarService *service.CalendarService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		calendarService: calendarService,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runBusySlotCleanupTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runBusySlotCleanupTask периодически удаляет устаревшие busy-слоты.
// Зеркала чужих календарей не чистятся самим участником, если он
// перестал синхронизироваться, поэтому чистим их здесь.
func (s *Scheduler) runBusySlotCleanupTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.cleanupBusySlots(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupBusySlots(ctx)
		case <-s.stopChan:
			s.logger.Info("Busy slot cleanup task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Busy slot cleanup task cancelled")
			return
		}
	}
}

// cleanupBusySlots удаляет busy-слоты, закончившиеся больше 30 дней назад
func (s *Scheduler) cleanupBusySlots(ctx context.Context) {
	s.logger.Info("Starting busy slot cleanup")

	deleted, err := s.calendarService.PurgeStaleBusySlots(ctx, 30*24*time.Hour)
	if err != nil {
		s.logger.Error("Busy slot cleanup failed", zap.Error(err))
		return
	}

	s.logger.Info("Busy slot cleanup finished", zap.Int64("deleted", deleted))
}
