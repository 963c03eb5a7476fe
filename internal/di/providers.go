package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/app"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/config"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/database"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/health"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/handler"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/middleware"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/router"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/mail"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/repository"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/security"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideImageStorage,
	provideMailBus,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewCategoryRepository,
	repository.NewRecipeRepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	providePasswordHasher,
)

var ServiceSet = wire.NewSet(
	provideListCache,
	provideAccountNotifier,
	wire.Bind(new(service.AccountNotifier), new(*service.AsyncNotifier)),
	service.NewAuthService,
	service.NewCategoryService,
	service.NewRecipeService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	wire.Bind(new(service.CategoryServiceInterface), new(*service.CategoryService)),
	wire.Bind(new(service.RecipeServiceInterface), new(*service.RecipeService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewCategoryHandler,
	provideRecipeHandler,
	handler.NewImageHandler,
	provideHTTPMetrics,
	provideGlobalRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

// provideRuntimeDB opens the database and brings the schema up to date.
// Seeding is left to cmd/seed.
func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

// provideRedisClient returns nil unless a Redis-backed feature is enabled.
func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RateLimitRedisEnabled && !(cfg.ListCacheEnabled && cfg.ListCacheRedisEnable) {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideImageStorage(cfg *config.Config, logger *slog.Logger) (service.ImageStorage, error) {
	if !cfg.MinIOEnabled {
		logger.Warn("MINIO_ENABLED=false, recipe images are kept in memory")
		return service.NewInMemoryImageStorage(cfg.MaxUploadBytes), nil
	}
	storage, err := service.NewMinIOImageStorage(
		cfg.MinIOEndpoint,
		cfg.MinIOAccessKey,
		cfg.MinIOSecretKey,
		cfg.MinIOBucket,
		cfg.MinIOUseSSL,
		cfg.MaxUploadBytes,
	)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}
	return storage, nil
}

// provideMailBus connects to NATS only for MAIL_DELIVERY=queue.
func provideMailBus(cfg *config.Config) (*mail.Bus, error) {
	if cfg.MailDelivery != config.MailDeliveryQueue {
		return nil, nil
	}
	bus, err := mail.NewBus(cfg.NATSURL, nats.Name(cfg.AppName+"-api"))
	if err != nil {
		return nil, err
	}
	if err := bus.EnsureStream(cfg.MailQueueStream, cfg.MailQueueSubject); err != nil {
		bus.Close()
		return nil, err
	}
	return bus, nil
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
}

func providePasswordHasher(cfg *config.Config) *security.PasswordHasher {
	return security.NewPasswordHasher(cfg.BcryptCost)
}

func provideListCache(cfg *config.Config, redisClient redis.UniversalClient) *service.ListCache {
	if !cfg.ListCacheEnabled {
		return service.NewListCache(service.NewNoopListCacheStore(), 0)
	}
	if cfg.ListCacheRedisEnable && redisClient != nil {
		return service.NewListCache(service.NewRedisListCacheStore(redisClient, cfg.ListCacheRedisPrefix), cfg.ListCacheTTL)
	}
	return service.NewListCache(service.NewInMemoryListCacheStore(), cfg.ListCacheTTL)
}

// provideAccountNotifier picks the delivery path from MAIL_DELIVERY and wraps
// it so request handlers never wait on mail.
func provideAccountNotifier(cfg *config.Config, logger *slog.Logger, bus *mail.Bus) (*service.AsyncNotifier, error) {
	var next service.AccountNotifier
	renderer := mail.NewRenderer(cfg.AppName, cfg.MailFrom)
	switch cfg.MailDelivery {
	case config.MailDeliverySMTP:
		sender, err := mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			User:     cfg.MailUser,
			Password: cfg.MailPassword,
			Secure:   cfg.MailSecure,
			Timeout:  cfg.MailSendTimeout,
		})
		if err != nil {
			return nil, err
		}
		next = mail.NewNotifier(renderer, sender, config.MailDeliverySMTP)
	case config.MailDeliveryQueue:
		if bus == nil {
			return nil, fmt.Errorf("MAIL_DELIVERY=queue requires a mail bus")
		}
		next = mail.NewNotifier(renderer, mail.NewQueueSender(bus, cfg.MailQueueSubject), config.MailDeliveryQueue)
	default:
		next = service.NewDevEmailVerificationNotifier(logger)
	}
	return service.NewAsyncNotifier(next, logger, cfg.MailSendTimeout), nil
}

func provideRecipeHandler(svc service.RecipeServiceInterface, cfg *config.Config) *handler.RecipeHandler {
	return handler.NewRecipeHandler(svc, cfg.MaxUploadBytes)
}

func provideHTTPMetrics(cfg *config.Config) *observability.HTTPMetrics {
	if !cfg.MetricsEnabled {
		return nil
	}
	return observability.NewHTTPMetrics()
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix)
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware()
	}
	return middleware.LocalRateLimit("api", cfg.APIRateLimitPerMin, time.Minute)
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.AuthRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix)
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.AuthRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
			"auth",
		).Middleware()
	}
	return middleware.LocalRateLimit("auth", cfg.AuthRateLimitPerMin, time.Minute)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	categoryHandler *handler.CategoryHandler,
	recipeHandler *handler.RecipeHandler,
	imageHandler *handler.ImageHandler,
	jwt *security.JWTManager,
	globalRateLimiter router.GlobalRateLimiterFunc,
	authRateLimiter router.AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
	metrics *observability.HTTPMetrics,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		CategoryHandler:   categoryHandler,
		RecipeHandler:     recipeHandler,
		ImageHandler:      imageHandler,
		JWTManager:        jwt,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		AuthRateLimitRPM:  cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		GlobalRateLimiter: globalRateLimiter,
		AuthRateLimiter:   authRateLimiter,
		Readiness:         readiness,
		HTTPMetrics:       metrics,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(
	cfg *config.Config,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	images service.ImageStorage,
	bus *mail.Bus,
) *health.ProbeRunner {
	checkers := []health.Checker{
		health.NewDBChecker(db),
		health.NewRedisChecker(redisClient),
	}
	if minioStorage, ok := images.(*service.MinIOImageStorage); ok {
		checkers = append(checkers, health.NewMinIOChecker(minioStorage.Client(), minioStorage.Bucket()))
	}
	if bus != nil {
		checkers = append(checkers, health.NewPingChecker("mail_queue", func(context.Context) error { return bus.Ping() }))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}
