package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/marketplace-admin/internal/api/http"
	"github.com/spec-kit/marketplace-admin/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-admin/internal/auth"
	"github.com/spec-kit/marketplace-admin/internal/config"
	"github.com/spec-kit/marketplace-admin/internal/events"
	"github.com/spec-kit/marketplace-admin/internal/observability"
	"github.com/spec-kit/marketplace-admin/internal/persistence"
	"github.com/spec-kit/marketplace-admin/internal/ratelimit"
	"github.com/spec-kit/marketplace-admin/internal/repository"
	"github.com/spec-kit/marketplace-admin/internal/service"
	"github.com/spec-kit/marketplace-admin/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	adminRepo := repository.NewAdminRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)

	limiter := ratelimit.NewLoginLimiter(redis.ClientHandle(), cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow(), logger)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAdminAuthService(*cfg, service.AdminAuthDependencies{
		AdminRepo:     adminRepo,
		RoleDirectory: roleRepo,
		Limiter:       limiter,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})
	roleService := service.NewRolePermissionService(*cfg, service.RolePermissionDependencies{
		RoleRepo:   roleRepo,
		AdminRepo:  adminRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenIssuer())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		AdminAuth:      handlers.NewAdminAuthHandler(authService, cfg),
		RolePermission: handlers.NewRolePermissionHandler(roleService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
