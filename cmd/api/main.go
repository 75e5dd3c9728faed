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

	httptransport "github.com/spec-kit/cockpit-service/internal/api/http"
	"github.com/spec-kit/cockpit-service/internal/api/http/handlers"
	"github.com/spec-kit/cockpit-service/internal/auth"
	"github.com/spec-kit/cockpit-service/internal/cache"
	"github.com/spec-kit/cockpit-service/internal/config"
	"github.com/spec-kit/cockpit-service/internal/events"
	"github.com/spec-kit/cockpit-service/internal/observability"
	"github.com/spec-kit/cockpit-service/internal/persistence"
	"github.com/spec-kit/cockpit-service/internal/repository"
	"github.com/spec-kit/cockpit-service/internal/service"
	"github.com/spec-kit/cockpit-service/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
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

	// Upstream clients.
	snClient := upstream.NewServiceNowClient(
		cfg.ServiceNow.InstanceURL, cfg.ServiceNow.Username, cfg.ServiceNow.Password,
		cfg.ServiceNow.Timeout(), logger)
	graphClient := upstream.NewGraphClient(
		cfg.Graph.BaseURL, cfg.Graph.AuthBaseURL, cfg.Graph.TenantID,
		cfg.Graph.ClientID, cfg.Graph.ClientSecret, cfg.Graph.Timeout())
	nxClient := upstream.NewNexthinkClient(
		cfg.Nexthink.APIURL, cfg.Nexthink.AuthURL,
		cfg.Nexthink.ClientID, cfg.Nexthink.ClientSecret, cfg.Nexthink.Timeout())

	var summarizer *upstream.Summarizer
	if cfg.GoogleAI.APIKey != "" {
		summarizer, err = upstream.NewSummarizer(ctx, cfg.GoogleAI.APIKey, cfg.GoogleAI.Model)
		if err != nil {
			logger.Warn("solution generation disabled", zap.Error(err))
		}
	} else {
		logger.Warn("GOOGLE_AI_API_KEY not provided; solution generation disabled")
	}

	var store cache.Store
	if cfg.Cache.Backend == "redis" && redis.Client != nil {
		store = cache.NewRedis(redis.Client, "cockpit:cache:", logger)
	} else {
		store = cache.NewMemory(cfg.Cache.MaxEntries)
	}

	pool := pg.PoolHandle()
	incidentRepo := repository.NewIncidentRepository(pool)
	actionRepo := repository.NewActionRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	resolver := service.NewDeviceResolver(graphClient, logger)
	recommender := service.NewRecommender(nxClient, logger)

	var generator service.PointGenerator
	if summarizer != nil {
		generator = summarizer
	}
	knowledge := service.NewKnowledgeService(snClient, generator, store, incidentRepo, logger)

	aggregator := service.NewDetailAggregator(service.AggregatorDependencies{
		Tickets:     snClient,
		Devices:     graphClient,
		Resolver:    resolver,
		Solutions:   knowledge,
		Recommender: recommender,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	cockpit := service.NewCockpitService(service.CockpitDependencies{
		Tickets:    snClient,
		Aggregator: aggregator,
		Dispatcher: dispatcher,
		Incidents:  incidentRepo,
		Logger:     logger,
	})
	defer cockpit.Close()

	actions := service.NewActionService(service.ActionDependencies{
		Client:     nxClient,
		Runs:       actionRepo,
		Audit:      auditRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	tracker := service.NewHealthTracker(map[string]service.Pinger{
		"servicenow": snClient,
		"graph":      graphClient,
		"nexthink":   nxClient,
	}, logger)
	go probeLoop(ctx, tracker, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, cfg.Auth.Enabled)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, tracker, metrics),
		Cockpit:        handlers.NewCockpitHandler(cockpit),
		Tickets:        handlers.NewTicketsHandler(snClient, knowledge),
		Devices:        handlers.NewDevicesHandler(graphClient),
		Actions:        handlers.NewActionsHandler(actions, recommender, snClient),
		Cache:          handlers.NewCacheHandler(store),
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

// probeLoop records upstream health at a fixed interval for the uptime
// reports.
func probeLoop(ctx context.Context, tracker *service.HealthTracker, logger *zap.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	tracker.CheckAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tracker.CheckAll(ctx)
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
