// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/booking"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/cache"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/config"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/database"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/handler"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/logging"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/repository"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/service"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.DSN(), logger)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to PostgreSQL", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	if cfg.DBSeed {
		seeded, err := database.Seed(ctx, pool)
		if err != nil {
			return err
		}
		if seeded {
			logger.Info("seeded demo people and appointments")
		}
	}

	// ── 2. Optional Redis cache ───────────────────────────────────────────
	var apptCache cache.AppointmentCache = cache.Noop{}
	if cfg.RedisEnabled {
		client, err := cache.NewRedisClient(ctx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer client.Close()
		apptCache = cache.NewRedisCache(client, cfg.CacheTTL)
		logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	policy, err := booking.ParseBoundaryPolicy(cfg.BookingBoundary)
	if err != nil {
		return fmt.Errorf("booking: %w", err)
	}
	apptRepo := repository.NewAppointmentRepository(pool)
	personRepo := repository.NewPersonRepository(pool)
	coordinator := booking.NewCoordinator(apptRepo, repository.IsOverlapConflict, booking.Config{
		Policy:     policy,
		CheckDelay: cfg.BookingCheckDelay,
		Observer:   service.PhaseLogger(logger),
	})
	apptSvc := service.NewAppointmentService(coordinator, apptRepo, personRepo, apptCache, logger, service.Options{
		AllowWait: cfg.BookingAllowWait,
		WaitDelay: cfg.BookingWaitDelay,
	})
	apptHandler := handler.NewAppointmentHandler(apptSvc)
	limiter := handler.NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst, logger)
	logger.Info("booking coordinator ready",
		zap.Stringer("boundary", coordinator.Policy()),
		zap.Bool("allow_wait", cfg.BookingAllowWait),
	)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      handler.NewRouter(apptHandler, logger, limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.BookingWaitDelay,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
