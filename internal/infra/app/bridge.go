package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/config"
	kafkainfra "github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/kafka"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/logger"
	redisinfra "github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/redis"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/security"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/telemetry"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/pushbridge"
	redisrepo "github.com/franckjack156-lang/GestiHotel-sub002/internal/repository/redis"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/handlers"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/middleware"
)

// BridgeApplication is the notification delivery bridge process. It shares no state with the API.
type BridgeApplication struct {
	cfg      *config.AppConfig
	logger   *zap.Logger
	bridge   *pushbridge.Bridge
	consumer *kafkainfra.PushConsumer
	group    sarama.ConsumerGroup
	producer *kafkainfra.Producer
	redis    *redisinfra.Client
	tracer   *telemetry.TracerProvider
	engine   *gin.Engine
}

// NewBridge wires the push consumer, device notifier, window hub and cache storage.
func NewBridge(ctx context.Context, cfg *config.AppConfig) (*BridgeApplication, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.With(zap.String("component", "pushbridge"))

	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required by the push bridge")
	}

	tracer, err := newTracer(ctx, cfg, "pushbridge", log)
	if err != nil {
		return nil, err
	}

	redisClient, err := redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init kafka producer: %w", err)
	}

	group, err := kafkainfra.NewConsumerGroup(cfg.Kafka)
	if err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		return nil, err
	}

	verifier, err := security.NewIdentityVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		_ = group.Close()
		_ = producer.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init identity verifier: %w", err)
	}

	pushMetrics, err := telemetry.NewPushMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init push metrics: %w", err)
	}

	notifier := kafkainfra.NewDeviceNotifier(producer, cfg.Kafka.DeviceTopic)
	hub := pushbridge.NewWindowHub(cfg.App.PublicOrigin, verifier, notifier, log)
	if _, err := telemetry.RegisterWindowsGauge(prometheus.DefaultRegisterer, hub.Count); err != nil {
		return nil, fmt.Errorf("init windows gauge: %w", err)
	}
	bridge := pushbridge.New(notifier, hub, redisrepo.NewCacheStorage(redisClient.Client()), pushMetrics, log, pushbridge.Options{
		AppName:      cfg.Push.AppName,
		Icon:         cfg.Push.Icon,
		Badge:        cfg.Push.Badge,
		Origin:       cfg.App.PublicOrigin,
		CachePrefix:  cfg.Push.CachePrefix,
		CacheVersion: cfg.Push.CacheVersion,
	})

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(log))

	health := handlers.NewHealthHandler(handlers.WithReadinessCheck("redis", redisClient.HealthCheck))
	engine.GET("/healthz", health.Status)
	engine.GET("/readyz", health.Readiness)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/windows", gin.WrapH(hub))

	return &BridgeApplication{
		cfg:      cfg,
		logger:   log,
		bridge:   bridge,
		consumer: kafkainfra.NewPushConsumer(bridge, cfg.Kafka, log),
		group:    group,
		producer: producer,
		redis:    redisClient,
		tracer:   tracer,
		engine:   engine,
	}, nil
}

// Run activates the bridge, then consumes push traffic and serves windows until ctx is cancelled.
func (b *BridgeApplication) Run(ctx context.Context) error {
	defer func() {
		_ = b.logger.Sync()
	}()
	defer b.closeResources()

	activateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := b.bridge.Activate(activateCtx); err != nil {
		b.logger.Warn("cache cleanup on activation failed", zap.Error(err))
	}
	cancel()

	consumerErrCh := make(chan error, 1)
	go func() {
		if err := b.consumer.Run(ctx, b.group); err != nil && !errors.Is(err, context.Canceled) {
			consumerErrCh <- err
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", b.cfg.Push.BridgeHost, b.cfg.Push.BridgePort),
		Handler:           b.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	b.logger.Info("starting push bridge",
		zap.String("address", srv.Addr),
		zap.Strings("topics", b.consumer.Topics()),
		zap.String("cache_group", b.cfg.Push.CacheGroup()),
	)

	serveCtx, stop := context.WithCancel(ctx)
	defer stop()

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- serve(serveCtx, srv)
	}()

	select {
	case err := <-consumerErrCh:
		stop()
		<-serveErrCh
		return err
	case err := <-serveErrCh:
		return err
	}
}

func (b *BridgeApplication) closeResources() {
	if b.group != nil {
		_ = b.group.Close()
	}
	if b.producer != nil {
		_ = b.producer.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.tracer != nil {
		_ = b.tracer.Shutdown(context.Background())
	}
}
