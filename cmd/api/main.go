package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/escalation-service/internal/api/http"
	"github.com/spec-kit/escalation-service/internal/api/http/handlers"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/persistence"
	"github.com/spec-kit/escalation-service/internal/repository"
	"github.com/spec-kit/escalation-service/internal/repository/memory"
	"github.com/spec-kit/escalation-service/internal/service"
	"github.com/spec-kit/escalation-service/internal/worker"
)

// stores groups the persistence backends selected at boot.
type stores struct {
	matters       repository.MatterStore
	overrides     repository.OverrideRepository
	users         repository.UserRepository
	tickets       repository.TicketTarget
	notifications repository.NotificationRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var st stores
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		st = stores{
			matters:       repository.NewMatterStore(pool),
			overrides:     repository.NewOverrideRepository(pool),
			users:         repository.NewUserRepository(pool),
			tickets:       repository.NewTicketRepository(pool),
			notifications: repository.NewNotificationRepository(pool),
		}
	} else {
		directory := memory.NewDirectory()
		if cfg.App.DevSeedPassword != "" {
			if err := seedDevDirectory(directory, cfg.App.DevSeedPassword, cfg.Auth.BcryptCost); err != nil {
				logger.Fatal("failed to seed dev directory", zap.Error(err))
			}
			logger.Warn("seeded in-memory directory with demo users")
		}
		st = stores{
			matters:       memory.NewMatterStore(),
			overrides:     memory.NewOverrideRepository(),
			users:         directory,
			tickets:       memory.NewTicketStore(),
			notifications: memory.NewNotificationStore(),
		}
	}

	metrics := observability.NewMetrics()
	policy := service.NewPolicy(cfg.Escalation)
	directory := repository.NewCachedDirectory(st.users, redis.Client, cfg.Directory.CacheTTL(), logger)

	var queue events.Queue
	if redis.Client != nil {
		recovered, err := events.RecoverRedisQueue(ctx, redis.Client, cfg.Notification.QueueKey)
		if err != nil {
			logger.Warn("failed to recover in-flight notifications", zap.Error(err))
		} else if recovered > 0 {
			logger.Info("recovered in-flight notifications", zap.Int("count", recovered))
		}
		queue = events.NewRedisQueue(redis.Client, cfg.Notification.QueueKey)
	} else {
		queue = events.NewMemoryQueue(1024)
	}

	dispatcherDeps := service.DispatcherDependencies{
		Directory:     directory,
		Notifications: st.notifications,
		Timeout:       cfg.Notification.DeliveryTimeout(),
		Logger:        logger,
		Metrics:       metrics,
	}
	if ch := service.NewWhatsAppChannel(cfg.Notification.WhatsAppGatewayURL, cfg.Notification.WhatsAppGatewayToken); ch != nil {
		dispatcherDeps.Primary = ch
	} else {
		logger.Warn("WHATSAPP_GATEWAY_URL not set; direct messages will fail with channel_not_configured")
	}
	if ch := service.NewEmailChannel(cfg.Notification); ch != nil {
		dispatcherDeps.Email = ch
	}
	dispatcher := service.NewNotificationDispatcher(dispatcherDeps)
	notificationService := service.NewNotificationService(queue, dispatcher, st.notifications, logger)

	matterService := service.NewMatterService(service.MatterDependencies{
		Store:      st.matters,
		Directory:  directory,
		Tickets:    st.tickets,
		Policy:     policy,
		Mirror:     service.NewTicketMirror(st.tickets, logger, metrics),
		Dispatcher: dispatcher,
		Notifier:   notificationService,
		Logger:     logger,
		Metrics:    metrics,
	})
	dayCloseService := service.NewDayCloseService(service.DayCloseDependencies{
		Matters:   st.matters,
		Overrides: st.overrides,
		Directory: directory,
		Policy:    policy,
		Logger:    logger,
	})
	authService := service.NewAuthService(cfg.Auth, st.users, logger)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), directory)

	notificationWorker := worker.NewNotificationWorker(queue, notificationService,
		cfg.Notification.WorkerPoll(), cfg.Notification.MaxAttempts, logger, metrics)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		notificationWorker.Run(ctx)
	}()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	readiness := map[string]handlers.Pinger{"postgres": nil, "redis": nil}
	if pg.PoolHandle() != nil {
		readiness["postgres"] = pg
	}
	if redis.Client != nil {
		readiness["redis"] = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Escalations:    handlers.NewEscalationsHandler(matterService),
		DayClose:       handlers.NewDayCloseHandler(dayCloseService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
		Policy:         policy,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		logger.Warn("notification worker did not stop in time")
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
