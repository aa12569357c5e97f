package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"os/signal"

	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/application/audit"
	"github.com/taskforge/core-api/internal/application/auth"
	"github.com/taskforge/core-api/internal/application/cqrs"
	"github.com/taskforge/core-api/internal/application/task"
	"github.com/taskforge/core-api/internal/application/tenant"
	"github.com/taskforge/core-api/internal/infrastructure/cache"
	"github.com/taskforge/core-api/internal/infrastructure/metrics"
	"github.com/taskforge/core-api/internal/infrastructure/postgres"
	"github.com/taskforge/core-api/internal/infrastructure/pwned"
	"github.com/taskforge/core-api/internal/infrastructure/tracing"
	httpRouter "github.com/taskforge/core-api/internal/interfaces/http"
	"github.com/taskforge/core-api/internal/platform/events"
	"github.com/taskforge/core-api/internal/platform/security/password"
	"github.com/taskforge/core-api/internal/platform/security/token"
	"github.com/taskforge/core-api/internal/platform/tenantresolver"
	"github.com/taskforge/core-api/pkg/config"
	"github.com/taskforge/core-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})
	log.Info().Str("env", cfg.App.Env).Str("app", cfg.App.Name).Msg("starting up")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("connect to postgres")
		os.Exit(2)
	}
	defer pool.Close()

	redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, log.Zerolog())
	if err != nil {
		log.Error().Err(err).Msg("connect to redis")
		os.Exit(2)
	}

	tenantRepo := postgres.NewTenantRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	resolver := tenantresolver.NewResolver(tenantRepo, redisCache, cfg.Tenant.ApexHost)

	signingKey, err := token.LoadSigningKeyPair(cfg.Auth.ActiveKeyID, cfg.Auth.PrivateKeyPath)
	if err != nil {
		log.Error().Err(err).Msg("load signing key")
		os.Exit(2)
	}
	trustedKeys, err := token.LoadTrustedPublicKeys(cfg.Auth.PublicKeyPaths)
	if err != nil {
		log.Error().Err(err).Msg("load trusted public keys")
		os.Exit(2)
	}
	trustedKeys = append(trustedKeys, signingKey)
	signer := token.NewSigner(cfg.Auth.Issuer, signingKey, trustedKeys)

	refreshRepo := postgres.NewRefreshTokenRepository(pool)
	refreshSvc := token.NewRefreshService(refreshRepo, []byte(cfg.Auth.RefreshTokenPepper))
	mfaSvc := token.NewMFAService(cfg.Auth.Issuer)

	breachTimeout := time.Duration(cfg.Auth.BreachOracleTimeoutSeconds) * time.Second
	pwnedClient := pwned.New(cfg.Auth.BreachOracleURL, breachTimeout, log.Zerolog())
	passwordSvc := password.New(pwnedClient)
	passwordSvc.FailClosedOnBreachOracleError = cfg.Auth.FailClosedOnBreachOracleError

	uow := postgres.NewPgUnitOfWork(pool)
	mediator := cqrs.NewMediator(uow, log.Zerolog())

	auth.NewService(passwordSvc, signer, refreshSvc, mfaSvc, redisCache).Register(mediator)
	task.NewService(log.Zerolog(), metrics.CrossTenantObserver{}).Register(mediator)
	tenant.NewService().Register(mediator)
	audit.NewService().Register(mediator)

	bus := events.NewBus()
	cacheInvalidation := events.NewCacheInvalidationSubscriber(redisCache)
	auditLog := events.NewAuditLogSubscriber(postgres.NewAuditLogRepository(pool))
	for _, eventType := range []events.Type{
		events.TypeUserRegistered, events.TypeUserLoggedIn, events.TypePasswordChanged,
		events.TypeMFAEnabled, events.TypeSecurityAlert,
		events.TypeTenantCreated, events.TypeTenantSettingsUpdated, events.TypeTenantDeactivated, events.TypeTenantReactivated,
		events.TypeTaskCreated, events.TypeTaskUpdated, events.TypeTaskAssigned, events.TypeTaskStatusChanged,
		events.TypeTaskDeleted, events.TypeTaskCommentAdded,
	} {
		bus.Register(eventType, auditLog)
	}
	for _, eventType := range []events.Type{
		events.TypeTaskCreated, events.TypeTaskUpdated, events.TypeTaskAssigned, events.TypeTaskStatusChanged,
		events.TypeTaskDeleted, events.TypeTaskCommentAdded,
		events.TypeTenantSettingsUpdated,
		events.TypeUserRegistered, events.TypePasswordChanged, events.TypeMFAEnabled,
	} {
		bus.Register(eventType, cacheInvalidation)
	}

	outboxWorker := events.NewWorker(
		postgres.NewOutboxRepository(pool),
		bus,
		log.Zerolog(),
		time.Duration(cfg.Observability.OutboxPollInterval)*time.Second,
		cfg.Observability.OutboxBatchSize,
		metrics.DeadLetterObserver{},
	)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go outboxWorker.Run(workerCtx)

	shutdownTracing, err := tracing.Init(ctx, cfg.Observability.OTLPEndpoint, cfg.App.Name, cfg.App.Env, log.Zerolog())
	if err != nil {
		log.Error().Err(err).Msg("init tracing")
		os.Exit(2)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: httpRouter.ErrorHandler,
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Mediator: mediator,
		Pool:     pool,
		Cache:    redisCache,
		Resolver: resolver,
		Signer:   signer,
		Users:    userRepo,
		Cfg:      cfg,
		Log:      log.Zerolog(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	cancelWorker()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}

	log.Info().Msg("stopped")
}
