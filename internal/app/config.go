package app

import (
	"strings"
	"time"

	"github.com/yungbote/storefront-backend/internal/platform/cache"
	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/platform/sendgrid"
)

const (
	EventBusNone  = "none"
	EventBusRedis = "redis"
	EventBusKafka = "kafka"
)

type Config struct {
	Port    string
	LogMode string

	DBDriver  string
	SQLiteDSN string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartCacheTTL  time.Duration

	EventBus     string
	EventPrefix  string
	KafkaBrokers []string

	CartJanitorInterval time.Duration

	AllowedOrigins []string
	MetricsAddr    string

	SendGrid  sendgrid.Config
	StoreName string

	ServiceName string
	Environment string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		DBDriver:  strings.ToLower(envutil.String("DB_DRIVER", "postgres")),
		SQLiteDSN: envutil.String("SQLITE_DSN", "file:storefront.db?_foreign_keys=on"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		CartCacheTTL:  envutil.Duration("CART_CACHE_TTL", cache.DefaultTTL),

		EventBus:     strings.ToLower(envutil.String("EVENT_BUS", EventBusNone)),
		EventPrefix:  envutil.String("EVENT_CHANNEL_PREFIX", "storefront:"),
		KafkaBrokers: envutil.List("KAFKA_BROKERS", nil),

		CartJanitorInterval: envutil.Duration("CART_JANITOR_INTERVAL", time.Hour),

		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
		MetricsAddr:    envutil.String("METRICS_ADDR", ""),

		SendGrid:  sendgrid.ConfigFromEnv(),
		StoreName: envutil.String("STORE_NAME", "Audiophile"),

		ServiceName: envutil.String("OTEL_SERVICE_NAME", "storefront-backend"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	}

	switch cfg.EventBus {
	case EventBusNone, EventBusRedis, EventBusKafka:
	default:
		log.Warn("Unknown EVENT_BUS; events disabled", "event_bus", cfg.EventBus)
		cfg.EventBus = EventBusNone
	}
	return cfg
}
