package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/lead-lens/internal/api/http"
	"github.com/spec-kit/lead-lens/internal/api/http/handlers"
	"github.com/spec-kit/lead-lens/internal/auth"
	"github.com/spec-kit/lead-lens/internal/config"
	"github.com/spec-kit/lead-lens/internal/events"
	"github.com/spec-kit/lead-lens/internal/observability"
	"github.com/spec-kit/lead-lens/internal/persistence"
	"github.com/spec-kit/lead-lens/internal/ratelimit"
	"github.com/spec-kit/lead-lens/internal/repository"
	"github.com/spec-kit/lead-lens/internal/salesforce"
	"github.com/spec-kit/lead-lens/internal/service"
	"github.com/spec-kit/lead-lens/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	principalRepo := repository.NewPrincipalRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	metadataRepo := repository.NewMetadataCacheRepository(pool)

	sf := newSalesforce(cfg.Salesforce, logger, metrics)

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(dispatcher, service.NewAuditRecorder(auditRepo, metrics, logger))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		PrincipalRepo: principalRepo,
		Logger:        logger,
	})
	contactService := service.NewContactService(service.ContactDependencies{
		Salesforce: sf,
		AuditRepo:  auditRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	metadataService := service.NewMetadataService(sf, metadataRepo, cfg.Metadata.CacheTTL(), logger)
	principalService := service.NewPrincipalService(*cfg, service.PrincipalDependencies{
		PrincipalRepo:  principalRepo,
		ContactService: contactService,
		Logger:         logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		FrontendURL: cfg.App.FrontendURL,
		Production:  cfg.App.IsProduction(),
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Contacts:       handlers.NewContactsHandler(contactService),
		Metadata:       handlers.NewMetadataHandler(metadataService),
		Principals:     principalService,
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
		LoginLimiter:   newLoginLimiter(cfg.RateLimit, redis),
		Metrics:        metrics,
		Logger:         logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newSalesforce(cfg config.SalesforceConfig, logger *zap.Logger, metrics *observability.Metrics) salesforce.API {
	if cfg.Mock {
		logger.Info("using mock salesforce org")
		return salesforce.NewMock()
	}
	tokens := salesforce.NewTokenSource(cfg, &http.Client{Timeout: cfg.Timeout()})
	return salesforce.NewClient(cfg, tokens, logger, metrics)
}

func newLoginLimiter(cfg config.RateLimitConfig, redis *persistence.Redis) ratelimit.Limiter {
	perSecond := ratelimit.PerMinute(cfg.LoginPerMinute)
	if cfg.Backend == "redis" {
		return ratelimit.NewRedis(redis.Client, "lead-lens:ratelimit:", perSecond, cfg.LoginBurst)
	}
	return ratelimit.NewMemory(perSecond, cfg.LoginBurst)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
