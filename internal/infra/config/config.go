package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "GESTIHOTEL"

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Auth      AuthSettings      `mapstructure:"auth"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	Sync      SyncSettings      `mapstructure:"sync"`
	Push      PushSettings      `mapstructure:"push"`
}

type AppSettings struct {
	Name         string `mapstructure:"name"`
	Env          string `mapstructure:"env"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	PublicOrigin string `mapstructure:"public_origin"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and key namespaces
type RedisSettings struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	DB            int    `mapstructure:"db"`
	Password      string `mapstructure:"password"`
	TLSEnabled    bool   `mapstructure:"tls_enabled"`
	PendingPrefix string `mapstructure:"pending_prefix"`
}

// KafkaSettings configures Kafka producer and consumers
type KafkaSettings struct {
	Brokers       []string `mapstructure:"brokers"`
	TopicPrefix   string   `mapstructure:"topic_prefix"`
	Async         bool     `mapstructure:"async"`
	PushTopic     string   `mapstructure:"push_topic"`
	DeviceTopic   string   `mapstructure:"device_topic"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
}

// AuthSettings configures verification of identity tokens issued by the authentication service.
type AuthSettings struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// SyncSettings configures the sync coordinators.
type SyncSettings struct {
	Timeout            time.Duration `mapstructure:"timeout"`
	ForceRatePerMinute int           `mapstructure:"force_rate_per_minute"`
	SessionIdleTTL     time.Duration `mapstructure:"session_idle_ttl"`
}

// PushSettings configures the notification bridge.
type PushSettings struct {
	AppName      string `mapstructure:"app_name"`
	Icon         string `mapstructure:"icon"`
	Badge        string `mapstructure:"badge"`
	CachePrefix  string `mapstructure:"cache_prefix"`
	CacheVersion string `mapstructure:"cache_version"`
	BridgeHost   string `mapstructure:"bridge_host"`
	BridgePort   int    `mapstructure:"bridge_port"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.public_origin",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.pending_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"kafka.push_topic",
		"kafka.device_topic",
		"kafka.consumer_group",
		"auth.jwt_secret",
		"auth.issuer",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
		"sync.timeout",
		"sync.force_rate_per_minute",
		"sync.session_idle_ttl",
		"push.app_name",
		"push.icon",
		"push.badge",
		"push.cache_prefix",
		"push.cache_version",
		"push.bridge_host",
		"push.bridge_port",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// CacheGroup returns the name of the current cache group of the bridge.
func (p PushSettings) CacheGroup() string {
	return p.CachePrefix + "-" + p.CacheVersion
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gestihotel-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.public_origin", "http://localhost:5173")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "gestihotel")
	v.SetDefault("postgres.password", "gestihotel_password")
	v.SetDefault("postgres.database", "gestihotel")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.pending_prefix", "gestihotel:pending")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "gestihotel")
	v.SetDefault("kafka.async", true)
	v.SetDefault("kafka.push_topic", "push")
	v.SetDefault("kafka.device_topic", "notification.device")
	v.SetDefault("kafka.consumer_group", "gestihotel-pushbridge")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "gestihotel-auth")

	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "gestihotel")
	v.SetDefault("telemetry.sampling_rate", 1.0)

	v.SetDefault("sync.timeout", "30s")
	v.SetDefault("sync.force_rate_per_minute", 6)
	v.SetDefault("sync.session_idle_ttl", "2h")

	v.SetDefault("push.app_name", "GestiHôtel")
	v.SetDefault("push.icon", "/icons/icon-192x192.png")
	v.SetDefault("push.badge", "/icons/badge-72x72.png")
	v.SetDefault("push.cache_prefix", "gestihotel")
	v.SetDefault("push.cache_version", "v1")
	v.SetDefault("push.bridge_host", "0.0.0.0")
	v.SetDefault("push.bridge_port", 8090)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envPrefix+"_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
