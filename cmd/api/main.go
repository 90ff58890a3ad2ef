package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dealroom/internal/api"
	"dealroom/internal/config"
	"dealroom/internal/httpserver"
	"dealroom/internal/realtime"
	"dealroom/internal/repository"
	"dealroom/internal/service/access"
	"dealroom/internal/service/ai"
	"dealroom/internal/service/auth"
	"dealroom/internal/service/message"
	"dealroom/internal/service/notification"
	"dealroom/internal/service/onboarding"
	"dealroom/internal/service/project"
	"dealroom/internal/service/shortlist"
	"dealroom/internal/service/sourcing"
	"dealroom/internal/service/task"
	"dealroom/migrations"
	"dealroom/pkg/circuitbreaker"
	"dealroom/pkg/db"
	"dealroom/pkg/logger"
	"dealroom/pkg/mq"
	"dealroom/pkg/otel"
	"dealroom/pkg/outbox"
	redisclient "dealroom/pkg/redis"
)

const serviceName = "dealroom-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing()

	// DB
	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer pool.Close()
	if cfg.DB.AutoMigrate {
		if err := migrations.Apply(ctx, pool, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	if err := redisclient.Ping(ctx, rdb); err != nil {
		log.Warn("Redis not reachable at startup", zap.Error(err))
	}

	// MQ
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	outboxRepo := outbox.NewRepository(pool)
	users := repository.NewUserRepository(pool)
	projects := repository.NewProjectRepository(pool)
	requests := repository.NewAccessRequestRepository(pool, outboxRepo)
	settings := repository.NewSettingsRepository(pool)
	messages := repository.NewMessageRepository(pool, outboxRepo)
	tasks := repository.NewTaskRepository(pool)
	milestones := repository.NewMilestoneRepository(pool)
	notifications := repository.NewNotificationRepository(pool)
	suppliers := repository.NewSupplierRepository(pool)
	quotes := repository.NewQuoteRepository(pool)
	experts := repository.NewExpertRepository(pool)
	investors := repository.NewInvestorProfileRepository(pool)
	shortlists := repository.NewShortlistRepository(pool, outboxRepo)

	// Realtime: redis carries socket rooms across instances, the registry serves local streams.
	registry := realtime.NewRegistry(cfg.Realtime.SubscriberBuffer, log)
	hub := realtime.NewHub(log)
	fanout := realtime.NewFanout(log, realtime.NewRedisBroadcaster(rdb), registry)
	relay := realtime.NewRelay(rdb, hub, log)

	// Services
	accessSvc := access.NewService(projects, requests, settings, cfg.Access.DefaultThreshold, log)
	authSvc := auth.NewService(users, cfg.JWT.Secret, cfg.JWTTTL(), log)
	projectSvc := project.NewService(projects, milestones, log)
	aiClient := ai.NewClient(cfg.AI.URL, cfg.AITimeout(), circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
		OnStateChange: func(from, to circuitbreaker.State) {
			log.Warn("AI circuit breaker state changed", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}))
	aiSvc := ai.NewService(projects, aiClient, log)
	authz := realtime.NewRoomAuthorizer(projects, tasks, accessSvc)
	messageSvc := message.NewService(messages, authz, fanout, log)
	taskSvc := task.NewService(tasks, log)
	notificationSvc := notification.NewService(notifications, log)
	replaySvc := outbox.NewReplayService(outboxRepo, publisher, log)
	sourcingSvc := sourcing.NewService(projects, suppliers, quotes, log)
	shortlistSvc := shortlist.NewService(projects, experts, shortlists, log)
	onboardingSvc := onboarding.NewService(users, experts, investors, log)

	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:       api.NewAuthHandler(authSvc, log),
		Project:    api.NewProjectHandler(projectSvc, aiSvc, log),
		Investor:   api.NewInvestorHandler(accessSvc, log),
		Admin:      api.NewAdminHandler(accessSvc, replaySvc, cfg.Access.DefaultThreshold, log),
		Message:    api.NewMessageHandler(messageSvc, log),
		Task:       api.NewTaskHandler(taskSvc, notificationSvc, log),
		Stream:     api.NewStreamHandler(registry, authz, cfg.JWT.Secret, log),
		WS:         realtime.NewWSServer(hub, authz, cfg.JWT.Secret, cfg.Realtime.AllowedOrigins, log),
		Sourcing:   api.NewSourcingHandler(sourcingSvc, log),
		Shortlist:  api.NewShortlistHandler(shortlistSvc, log),
		Onboarding: api.NewOnboardingHandler(onboardingSvc, log),
	}, cfg.JWT.Secret, map[string]httpserver.ReadyCheck{
		"db":    pool.Ping,
		"redis": func(ctx context.Context) error { return redisclient.Ping(ctx, rdb) },
	}, log)

	// Background workers
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log).
		WithInterval(cfg.OutboxInterval()).
		WithBatchSize(cfg.Outbox.BatchSize).
		WithMaxRetries(cfg.Outbox.MaxRetries)
	go dispatcher.Start(ctx)

	go relay.Run(ctx)

	// Request contexts derive from ctx so open streams and sockets end on shutdown.
	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down dealroom-api gracefully...")

	registry.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("dealroom-api shutdown complete")
}
