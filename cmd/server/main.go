package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bandsync/internal/app"
	"bandsync/internal/calendar"
	"bandsync/internal/config"
	"bandsync/internal/controller"
	"bandsync/internal/notify"
	"bandsync/internal/repository"
	"bandsync/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting bandsync server",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	availRepo := repository.NewAvailabilityRepository(pool)
	busyRepo := repository.NewBusySlotRepository(pool)
	eventRepo := repository.NewPracticeEventRepository(pool)
	feedRepo := repository.NewCalendarFeedRepository(pool)

	// Внешние адаптеры
	icsClient := calendar.NewClient(logger)
	announcer, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
	if err != nil {
		logger.Fatal("Failed to create telegram notifier", zap.Error(err))
	}

	// Сервисы
	userService := service.NewUserService(userRepo, groupRepo, memberRepo, logger)
	groupService := service.NewGroupService(groupRepo, memberRepo, availRepo, eventRepo, busyRepo, logger)
	availService := service.NewAvailabilityService(groupRepo, memberRepo, availRepo, busyRepo, logger)
	practiceService := service.NewPracticeService(groupRepo, memberRepo, eventRepo, busyRepo, announcer, logger)
	calendarService := service.NewCalendarService(feedRepo, busyRepo, icsClient, logger)

	// Фоновые задачи
	scheduler := app.NewScheduler(calendarService, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	ctrl := controller.New(userService, groupService, availService, practiceService, calendarService, cfg.JWTSecret, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      ctrl.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("✅ HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Ждём сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
