package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"daily-todo/internal/api"
	"daily-todo/internal/bot"
	"daily-todo/internal/config"
	"daily-todo/internal/repository"
	"daily-todo/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return writeErr(cmd, err)
			}
			return runServe(cmd.Context(), cfg, app.logger)
		},
	}
}

func newBotCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram front-end against the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := cfg.RequireTelegram(); err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			telegramBot, err := bot.New(cfg.TelegramToken, cfg.TelegramChatID, c, app.logger)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger.WithField("server", c.BaseURL).Info("bot started")
			if err := telegramBot.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			app.logger.Info("bot stopped")
			return nil
		},
	}
}

// runServe serves the REST surface until ctx is cancelled.
func runServe(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var rc *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rc = redis.NewClient(opts)
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, snapshot cache will miss")
		}
	}

	taskSvc := service.NewTaskService(repository.NewTaskRepository(db))
	snapshotStore := repository.NewSnapshotCache(repository.NewSnapshotRepository(db), rc, cfg.SnapshotCacheTTL)
	snapshotSvc := service.NewSnapshotService(snapshotStore, logger)

	if cfg.AutoSnapshotAt != "" {
		scheduler := service.NewDailyScheduler(cfg.Location, logger)
		auto := service.NewAutoSnapshot(taskSvc, snapshotSvc, cfg.Location, logger)
		id, err := scheduler.ScheduleDaily(cfg.AutoSnapshotAt, auto.Job())
		if err != nil {
			return fmt.Errorf("schedule auto snapshot: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.WithFields(log.Fields{
			"at":   cfg.AutoSnapshotAt,
			"next": scheduler.NextRun(id),
		}).Info("daily auto snapshot scheduled")
	}

	e := api.New(api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Health:         taskSvc.Ping,
	}, taskSvc, snapshotSvc, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(log.Fields{
			"addr":    cfg.ListenAddr,
			"db":      cfg.DatabaseURL,
			"origins": cfg.AllowedOrigins,
			"cache":   rc != nil,
		}).Info("server started")
		errCh <- e.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
