package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/config"
	"budget-tracker/internal/events"
	"budget-tracker/internal/handlers"
	"budget-tracker/internal/logger"
	"budget-tracker/internal/storage"
	"budget-tracker/web"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.DevMode, logger.LogLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(ctx, db, cfg.AdminUser, cfg.AdminPassword, log); err != nil {
		return err
	}

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	templates, err := fs.Sub(web.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	h := handlers.NewHandlers(db, templates, handlers.Options{
		Publisher:  publisher,
		Logger:     log,
		SessionTTL: cfg.SessionTTL,
	})

	srv := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        setupRouter(h, cfg.CORSAllowedOrigins),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("db_path", cfg.DBPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sweepSessions(gctx, db, cfg.SessionSweepInterval, log)
		return nil
	})

	return g.Wait()
}

func setupRouter(h *handlers.Handlers, allowedOrigins []string) http.Handler {
	return h.Routes(allowedOrigins)
}

func newPublisher(cfg *config.Config, log *zap.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		log.Info("event publishing disabled")
		return events.NopPublisher{}, nil
	}

	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	log.Info("event publishing enabled", zap.String("exchange", cfg.AMQPExchange), zap.String("queue", cfg.AMQPQueue))
	return events.LoggingPublisher{Next: p, Log: log}, nil
}

// seedAdmin creates the configured user when the database has no users yet.
func seedAdmin(ctx context.Context, db *storage.DB, username, password string, log *zap.Logger) error {
	if username == "" {
		return nil
	}

	count, err := db.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := db.CreateUser(ctx, username, hash)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info("created admin user", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

func sweepSessions(ctx context.Context, db *storage.DB, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := db.CleanExpiredSessions(ctx)
			if err != nil {
				log.Warn("failed to clean expired sessions", zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Debug("cleaned expired sessions", zap.Int64("removed", removed))
			}
		}
	}
}
