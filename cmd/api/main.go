package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/fms-support/internal/api/http"
	"github.com/spec-kit/fms-support/internal/api/http/handlers"
	"github.com/spec-kit/fms-support/internal/auth"
	"github.com/spec-kit/fms-support/internal/config"
	"github.com/spec-kit/fms-support/internal/events"
	"github.com/spec-kit/fms-support/internal/observability"
	"github.com/spec-kit/fms-support/internal/persistence"
	"github.com/spec-kit/fms-support/internal/repository"
	"github.com/spec-kit/fms-support/internal/service"
	"github.com/spec-kit/fms-support/internal/worker"
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

	metrics := observability.NewMetrics()

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
	ticketRepo := repository.NewTicketRepository(pool)
	responseRepo := repository.NewTicketResponseRepository(pool)
	approvalRepo := repository.NewApprovalLogRepository(pool)
	level3Repo := repository.NewLevel3EditRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	divisionRepo := repository.NewDivisionRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		ResponseRepo: responseRepo,
		ApprovalRepo: approvalRepo,
		Level3Repo:   level3Repo,
		CompanyRepo:  companyRepo,
		DivisionRepo: divisionRepo,
		Dispatcher:   dispatcher,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	orgService := service.NewOrgService(*cfg, service.OrgDependencies{
		CompanyRepo:  companyRepo,
		DivisionRepo: divisionRepo,
		UserRepo:     userRepo,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	reminderService := service.NewReminderService(ticketRepo, redis.Client, logger, cfg.Reminder, nil)

	worker.StartNotificationWorker(notificationService)
	if cfg.Reminder.Enabled {
		worker.StartReminderWorker(ctx, reminderService, cfg.Reminder.Interval(), logger)
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Org:            handlers.NewOrgHandler(orgService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
