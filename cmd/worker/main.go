package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	mqcontracts "dealroom/contracts/mq"
	"dealroom/internal/config"
	"dealroom/internal/mqhandler"
	"dealroom/internal/repository"
	"dealroom/internal/service/notification"
	"dealroom/pkg/db"
	"dealroom/pkg/logger"
	"dealroom/pkg/mq"
	"dealroom/pkg/otel"
	redisclient "dealroom/pkg/redis"
	"dealroom/pkg/util"
)

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
		ServiceName:    "dealroom-worker",
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing()

	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer pool.Close()

	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	notificationSvc := notification.NewService(repository.NewNotificationRepository(pool), log)
	guard := mqhandler.NewGuard(
		util.NewDeduper(rdb, 24*time.Hour, log),
		util.NewRetryCounter(rdb, time.Hour),
		publisher,
		cfg.Worker.MaxRetries,
		log,
	)
	handler := mqhandler.NewAccessRequestHandler(notificationSvc, guard, log)
	invites := mqhandler.NewShortlistHandler(notificationSvc, guard, log)

	bindings := []struct {
		routingKey string
		handle     mq.MessageHandler
	}{
		{mqcontracts.RoutingKeyAccessRequestStatusChanged, handler.HandleStatusChanged},
		{mqcontracts.RoutingKeyAccessRequestCreated, handler.HandleCreated},
		{mqcontracts.RoutingKeyShortlistInvited, invites.HandleInvited},
	}

	var wg sync.WaitGroup
	for _, b := range bindings {
		queue := cfg.Worker.Queue + "." + b.routingKey
		log.Info("Initializing MQ consumer", zap.String("queue", queue), zap.String("routing_key", b.routingKey))

		consumer, err := mq.NewConsumer(cfg.MQ.URL, queue, b.routingKey, log)
		if err != nil {
			log.Fatal("Failed to init consumer", zap.String("queue", queue), zap.Error(err))
		}
		defer consumer.Close()
		consumer.SetHandler(b.handle)

		wg.Add(1)
		go func(c *mq.Consumer, queue string) {
			defer wg.Done()
			if err := c.StartConsuming(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Consumer stopped", zap.String("queue", queue), zap.Error(err))
				stop()
			}
		}(consumer, queue)
	}

	// health checks and metrics only
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	engine.GET("/readyz", func(c *gin.Context) {
		if !publisher.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "mq_not_ready"})
			return
		}
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: cfg.Worker.HTTPPort, Handler: engine, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Worker HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("dealroom-worker is running")
	<-ctx.Done()
	log.Info("Shutting down dealroom-worker gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Worker HTTP server shutdown error", zap.Error(err))
	}
	wg.Wait()
	log.Info("dealroom-worker shutdown complete")
}
