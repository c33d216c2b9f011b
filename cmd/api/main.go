package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/teams-worktime/internal/config"
	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/teams-worktime/internal/handler/http"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/cache"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/cron"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/database"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/jwt"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/logger"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/sse"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/teams"
	"github.com/cmlabs-hris/teams-worktime/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/teams-worktime/internal/service/attendance"
	settingsService "github.com/cmlabs-hris/teams-worktime/internal/service/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	teamsClient := teams.NewClient(cfg.Teams)
	var calendarClient attendance.CalendarClient = teamsClient
	var invalidator settingsService.CacheInvalidator

	location := cfg.Location()

	// Redis is optional
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()

		cached := teams.NewCachedClient(teamsClient, redisClient, cfg.Redis.CacheTTL, location)
		calendarClient = cached
		invalidator = cached
		slog.Info("Calendar cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	snapshotRepo := postgresql.NewSnapshotRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)

	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceSvc := attendanceService.NewAttendanceService(snapshotRepo, settingsRepo, calendarClient, attendanceService.Options{
		LookbackMonths:   cfg.Sync.LookbackMonths,
		Concurrency:      cfg.Teams.Concurrency,
		DefaultThreshold: cfg.Sync.DefaultThreshold,
		Location:         location,
		Notifier:         hub,
	})
	settingsSvc := settingsService.NewSettingsService(settingsRepo, snapshotRepo, invalidator, cfg.Sync.DefaultThreshold, location)

	scheduler := cron.NewScheduler()
	jobs := cron.NewAttendanceJobs(settingsRepo, attendanceSvc, cfg.Sync.LookbackMonths)
	if err := jobs.RegisterJobs(scheduler, cfg.Sync.CronSpec); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	if next := scheduler.Next(cron.RefreshJobName); !next.IsZero() {
		slog.Info("Snapshot refresh scheduled", "next_run", next.In(location))
	}

	router := appHTTP.NewRouter(
		log,
		cfg.App.CORSAllowedOrigins,
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewSettingsHandler(settingsSvc),
		appHTTP.NewProxyHandler(teamsClient),
		appHTTP.NewEventsHandler(hub),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelled on shutdown so open event streams return
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
