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

	"github.com/spec-kit/helpdesk-service/internal/agent"
	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

type repositories struct {
	users       repository.UserRepository
	tickets     repository.TicketRepository
	replies     repository.ReplyRepository
	suggestions repository.SuggestionRepository
	audits      repository.AuditEventRepository
	articles    repository.ArticleRepository
	policies    repository.PolicyRepository
}

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

	if pool := pg.PoolHandle(); pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(repos.users, tokenManager, cfg.Auth, logger)
	if err := authService.EnsureAdmin(ctx); err != nil {
		logger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}

	auditService := service.NewAuditService(repos.audits, logger)
	kbService := service.NewKBService(repos.articles)
	configService := service.NewConfigService(repos.policies)

	retry := agent.RetryPolicy{
		MaxAttempts: cfg.Agent.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Agent.BackoffBaseMillis) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Agent.BackoffMaxMillis) * time.Millisecond,
	}
	classifier := agent.NewClassifier(cfg.Agent, retry, logger, metrics)
	drafter := agent.NewDrafter()

	triageService := service.NewTriageService(service.TriageDependencies{
		TicketRepo:     repos.tickets,
		ReplyRepo:      repos.replies,
		SuggestionRepo: repos.suggestions,
		PolicyRepo:     repos.policies,
		KB:             kbService,
		Classifier:     classifier,
		Drafter:        drafter,
		Audit:          auditService,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
	})

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repos.tickets,
		ReplyRepo:  repos.replies,
		UserRepo:   repos.users,
		Audit:      auditService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	triageWorker := worker.NewTriageWorker(triageService, cfg.Worker, logger)
	triageWorker.Start(dispatcher)
	defer triageWorker.Stop()

	authMiddleware := auth.NewAuthMiddleware(tokenManager, repos.users)
	rateLimiter := httptransport.NewRateLimiter(redis.Client, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, auditService),
		KB:             handlers.NewKBHandler(kbService),
		Agent:          handlers.NewAgentHandler(triageService),
		Config:         handlers.NewConfigHandler(configService),
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// buildRepositories selects the pgx-backed stores when a DSN is configured
// and falls back to the in-memory stores otherwise.
func buildRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("no postgres DSN configured, state will not survive restarts")
		return repositories{
			users:       memory.NewUserRepository(),
			tickets:     memory.NewTicketRepository(),
			replies:     memory.NewReplyRepository(),
			suggestions: memory.NewSuggestionRepository(),
			audits:      memory.NewAuditEventRepository(),
			articles:    memory.NewArticleRepository(),
			policies:    memory.NewPolicyRepository(),
		}
	}
	return repositories{
		users:       repository.NewUserRepository(pool),
		tickets:     repository.NewTicketRepository(pool),
		replies:     repository.NewReplyRepository(pool),
		suggestions: repository.NewSuggestionRepository(pool),
		audits:      repository.NewAuditEventRepository(pool),
		articles:    repository.NewArticleRepository(pool),
		policies:    repository.NewPolicyRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
