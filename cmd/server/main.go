package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/config"
	"catalog-service/internal/api"
	"catalog-service/internal/audit"
	"catalog-service/internal/auth"
	"catalog-service/internal/broker"
	"catalog-service/internal/cache"
	"catalog-service/internal/redisclient"
	"catalog-service/internal/service"
	"catalog-service/internal/store"
	"catalog-service/internal/util"
	"catalog-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting catalog service", zap.String("env", cfg.Server.Env))

	tp, err := util.InitTracer(cfg.Messaging.ServiceName, cfg.Observ.JaegerEndpoint, cfg.Observ.TracingEnabled)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewStore(store.Options{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		err := db.Migrate(migrateCtx, "up")
		cancel()
		if err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Redis backs both the cache and the rate limiter. Without it the service
	// runs uncached and unthrottled.
	var (
		cacheBackend cache.Backend
		limiter      api.RateLimiter
	)
	redisClient, err := redisclient.NewClient(redisclient.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, caching and rate limiting disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheBackend = redisClient
		limiter = redisClient
		logger.Info("Redis connected")
	}
	productCache := cache.New(cacheBackend, cfg.Redis.CacheTTL, cfg.Redis.OpTimeout)

	transport, messagingCheck := newTransport(ctx, cfg, logger)
	dispatcher := broker.NewDispatcher(transport)
	defer dispatcher.Close()

	eventPublisher := broker.NewEventPublisher(dispatcher, cfg.Messaging.ServiceName, cfg.Messaging.Destinations, cfg.Messaging.Timeout)

	auditLogger, err := audit.NewLogger(cfg.Audit.LogFile, !cfg.Server.IsProduction())
	if err != nil {
		logger.Fatal("Failed to open audit log", zap.Error(err))
	}
	defer auditLogger.Sync()

	verifier, err := newVerifier(cfg)
	if err != nil {
		logger.Fatal("Failed to configure authentication", zap.Error(err))
	}

	productService := service.NewProductService(db, productCache, eventPublisher, auditLogger, cfg.Business.SignificantPriceChangePercent)

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Options{
		Products:    productService,
		Verifier:    verifier,
		Audit:       auditLogger,
		Limiter:     limiter,
		RateLimit:   cfg.Server.RateLimitPerMinute,
		CORSOrigins: cfg.Server.CORSOrigins,
		Checks: []api.HealthCheck{
			{Name: "database", Critical: true, Check: func(ctx context.Context) bool { return db.Ping(ctx) == nil }},
			{Name: "cache", Check: productCache.Ping},
			{Name: "messaging", Check: messagingCheck},
		},
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if subscriber, ok := transport.(broker.Subscriber); ok && cfg.Messaging.ConsumeInbound {
		notificationWorker := worker.NewNotificationWorker(subscriber, cfg.Messaging.ServiceName, productService)
		g.Go(func() error {
			return notificationWorker.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
	}

	// Let in-flight notifications finish before the transport closes.
	eventPublisher.Wait()
	logger.Info("Server exited")
}

// newTransport builds the configured notification transport and its health probe.
// An unreachable AMQP broker is not fatal: the dispatcher reconnects on the
// next publish and the health endpoint reports messaging as unavailable.
func newTransport(ctx context.Context, cfg *config.Config, logger *zap.Logger) (broker.Transport, func(context.Context) bool) {
	switch cfg.Messaging.Transport {
	case config.TransportKafka:
		t := broker.NewKafkaTransport(cfg.Messaging.KafkaBrokers, cfg.Messaging.ConsumerGroup)
		logger.Info("Kafka transport initialized", zap.Strings("brokers", cfg.Messaging.KafkaBrokers))
		return t, func(ctx context.Context) bool { return t.Ping(ctx) == nil }
	default:
		t := broker.NewAMQPTransport(cfg.Messaging.RabbitMQURL)
		connectCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		defer cancel()
		if err := t.Connect(connectCtx); err != nil {
			logger.Warn("Message broker unavailable, notifications will retry on publish", zap.Error(err))
		} else {
			logger.Info("Message broker connected")
		}
		return t, func(context.Context) bool { return t.Connected() }
	}
}

// newVerifier prefers the identity service and falls back to local JWT validation
func newVerifier(cfg *config.Config) (auth.Verifier, error) {
	if cfg.Auth.ServiceURL != "" {
		return auth.NewServiceVerifier(cfg.Auth.ServiceURL, cfg.Auth.Timeout, cfg.Auth.MaxRetries), nil
	}
	v, err := auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		return nil, err
	}
	return v, nil
}
