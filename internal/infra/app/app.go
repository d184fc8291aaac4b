package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/config"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/database"
	kafkainfra "github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/kafka"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/logger"
	redisinfra "github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/redis"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/security"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/telemetry"
	postgresrepo "github.com/franckjack156-lang/GestiHotel-sub002/internal/repository/postgres"
	redisrepo "github.com/franckjack156-lang/GestiHotel-sub002/internal/repository/redis"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/middleware"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/routes"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/usecase"
)

// eventSink is implemented by both the Kafka and the logging publisher.
type eventSink interface {
	port.EventPublisher
	port.ToastSink
}

// Application is the GestiHôtel API process.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

// New wires the API: document store, pending queue, event bus and HTTP surface.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := newTracer(ctx, cfg, "api", log)
	if err != nil {
		return nil, err
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, cfg.App.Name, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	verifier, err := security.NewIdentityVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init identity verifier: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	pendingQueue := redisrepo.NewPendingActionQueue(redisClient.Client(), cfg.Redis.PendingPrefix)

	// Initialize Kafka event publisher
	var (
		events   eventSink
		producer *kafkainfra.Producer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			events = kafkainfra.NewStubPublisher(log)
		} else {
			events = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		events = kafkainfra.NewStubPublisher(log)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Registerer: prometheus.DefaultRegisterer,
		SkipPaths:  []string{"/healthz", "/readyz", "/metrics"},
	})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}
	syncMetrics, err := telemetry.NewSyncMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init sync metrics: %w", err)
	}

	establishmentService := usecase.NewEstablishmentService(repos.Establishments, repos.Users, events, log).
		WithIdleTTL(cfg.Sync.SessionIdleTTL)
	interventionService := usecase.NewInterventionService(repos.Interventions, establishmentService, pendingQueue, events, log)
	reconciler := usecase.NewReconciler(pendingQueue, repos.Users, interventionService, log)
	syncRegistry := usecase.NewSyncRegistry(reconciler, events, events, syncMetrics, log, usecase.SyncOptions{
		Timeout: cfg.Sync.Timeout,
		IdleTTL: cfg.Sync.SessionIdleTTL,
	})

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Verifier: verifier,
		Users:    repos.Users,
		Metrics:  httpMetrics,
		Database: pool,
		Cache:    redisClient,
		Services: routes.ServiceSet{
			Establishments: establishmentService,
			Interventions:  interventionService,
			Sync:           syncRegistry,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		tracer:   tracer,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains and releases every resource.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.closeResources()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      a.cfg.Sync.Timeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting GestiHôtel API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	return serve(ctx, srv)
}

func (a *Application) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracer != nil {
		_ = a.tracer.Shutdown(context.Background())
	}
}

func serve(ctx context.Context, srv *http.Server) error {
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func newTracer(ctx context.Context, cfg *config.AppConfig, component string, log *zap.Logger) (*telemetry.TracerProvider, error) {
	if cfg.Telemetry.OTLPEndpoint == "" {
		log.Info("otlp endpoint not configured, tracing disabled")
		return nil, nil
	}
	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, component, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	return tp, nil
}
