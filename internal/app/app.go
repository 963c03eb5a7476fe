package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/config"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/database"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/mail"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Notifier      *service.AsyncNotifier
	MailBus       *mail.Bus

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	notifier *service.AsyncNotifier,
	bus *mail.Bus,
) *App {
	return &App{
		Config:                       cfg,
		Logger:                       logger,
		Server:                       server,
		Observability:                runtime,
		DB:                           db,
		Redis:                        redisClient,
		Notifier:                     notifier,
		MailBus:                      bus,
		ShutdownTimeout:              cfg.ShutdownTimeout,
		ShutdownHTTPDrainTimeout:     cfg.ShutdownHTTPDrainTimeout,
		ShutdownObservabilityTimeout: cfg.ShutdownObservabilityTimeout,
	}
}

// Shutdown stops the process in order: drain HTTP, let queued account mail
// finish, flush telemetry, then close the stores. Every stage runs even when
// an earlier one fails.
func (a *App) Shutdown(ctx context.Context) error {
	totalCtx, totalCancel := context.WithTimeout(ctx, orDefault(a.ShutdownTimeout, 20*time.Second))
	defer totalCancel()

	var errs []error
	if a.Server != nil {
		httpCtx, cancel := context.WithTimeout(totalCtx, orDefault(a.ShutdownHTTPDrainTimeout, 10*time.Second))
		if err := a.Server.Shutdown(httpCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
		cancel()
	}
	if a.Notifier != nil {
		if err := a.Notifier.Wait(totalCtx); err != nil {
			errs = append(errs, fmt.Errorf("drain account mail: %w", err))
		}
	}
	if a.Observability != nil {
		obsCtx, cancel := context.WithTimeout(totalCtx, orDefault(a.ShutdownObservabilityTimeout, 8*time.Second))
		if err := a.Observability.Shutdown(obsCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown observability: %w", err))
		}
		cancel()
	}
	a.MailBus.Close()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis client: %w", err))
		}
	}
	if err := database.Close(a.DB); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
