package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitcoach/internal/availability"
	"fitcoach/internal/cache"
	"fitcoach/internal/config"
	"fitcoach/internal/db"
	"fitcoach/internal/logger"
	"fitcoach/internal/membership"
	"fitcoach/internal/server"
	"fitcoach/internal/timetable"
	"fitcoach/internal/visit"
)

// @title fitcoach API
// @version 1.0
// @description Coach availability, session booking and front-desk check-in.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting fitcoach")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...", "driver", cfg.DatabaseDriver)
	database, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	var timetableCache timetable.Cache
	if cfg.RedisAddr != "" {
		store := cache.New(cfg.RedisAddr, cfg.TimetableCacheTTL)
		defer store.Close()
		timetableCache = store
		logger.Info("Timetable cache enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.TimetableCacheTTL.String())
	}

	tx := db.NewTransactor(database)
	slotRepo := availability.NewRepository(database)

	availabilityService := availability.NewService(slotRepo, tx)
	timetableService := timetable.NewService(timetable.NewRepository(database), slotRepo, tx, timetableCache)
	membershipService := membership.NewService(membership.NewRepository(database))
	visitService := visit.NewService(visit.NewRepository(database), tx)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ExpirySweepInterval > 0 {
		go availability.NewSweeper(availabilityService, cfg.ExpirySweepInterval).Start(ctx)
	}

	srv := server.New(cfg, server.Handlers{
		Availability: availability.NewHandler(availabilityService),
		Sessions:     timetable.NewHandler(timetableService),
		Memberships:  membership.NewHandler(membershipService),
		Visits:       visit.NewHandler(visitService),
	}, database)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
