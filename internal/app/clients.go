package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/storefront-backend/internal/platform/cache"
	"github.com/yungbote/storefront-backend/internal/platform/events"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/platform/sendgrid"
	"github.com/yungbote/storefront-backend/internal/realtime"
)

type Clients struct {
	Redis     goredis.UniversalClient
	CartCache cache.CartCache
	Events    events.Publisher
	Hub       *realtime.Hub
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	out := Clients{CartCache: cache.Noop(), Events: events.Noop(), Hub: realtime.NewHub(log)}

	// Redis
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: 5 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("redis ping: %w", err)
		}
		out.Redis = rdb
		out.CartCache = cache.NewRedisCache(rdb, cfg.CartCacheTTL)
		log.Info("Cart cache backed by redis", "addr", cfg.RedisAddr, "ttl", cfg.CartCacheTTL.String())
	}

	// Events
	switch cfg.EventBus {
	case EventBusRedis:
		if out.Redis == nil {
			out.Close()
			return Clients{}, fmt.Errorf("EVENT_BUS=redis requires REDIS_ADDR")
		}
		pub, err := events.NewRedisPublisher(log, out.Redis, cfg.EventPrefix)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis events: %w", err)
		}
		out.Events = pub
	case EventBusKafka:
		pub, err := events.NewKafkaPublisher(log, cfg.KafkaBrokers)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init kafka events: %w", err)
		}
		out.Events = pub
	}
	// With a redis bus the hub is fed by the relay started in App.Start, which
	// also sees events from other instances.
	if cfg.EventBus != EventBusRedis {
		out.Events = events.Fanout(out.Events, realtime.NewHubPublisher(out.Hub))
	}
	log.Info("Event bus configured", "event_bus", cfg.EventBus)

	// Order confirmation emails
	if cfg.SendGrid.APIKey != "" {
		mail, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init sendgrid: %w", err)
		}
		out.Events = events.Fanout(out.Events, sendgrid.NewConfirmationPublisher(log, mail, cfg.StoreName))
		log.Info("Order confirmation emails enabled")
	}

	return out, nil
}

// Close releases the publisher before the redis client it may share.
func (c Clients) Close() {
	if c.Events != nil {
		_ = c.Events.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
