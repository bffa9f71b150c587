package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// envelope is the pub/sub payload; Redis channels carry no message key.
type envelope struct {
	Key   string          `json:"key"`
	Event json.RawMessage `json:"event"`
}

type redisPublisher struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// NewRedisPublisher publishes to channel <prefix><topic>. The client is owned by the caller.
func NewRedisPublisher(log *logger.Logger, rdb goredis.UniversalClient, prefix string) (Publisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisPublisher{
		log:    log.With("service", "RedisEventPublisher"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (p *redisPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg, err := json.Marshal(envelope{Key: key, Event: raw})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.prefix+topic, msg).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

func (p *redisPublisher) Close() error { return nil }

// Delivery is one event received from the redis bus.
type Delivery struct {
	Topic string
	Key   string
	Event json.RawMessage
}

// SubscribeRedis forwards events published on <prefix><topic> to onMsg until ctx is done.
// It returns once the subscription is confirmed.
func SubscribeRedis(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient, prefix string, topics []string, onMsg func(Delivery)) error {
	if rdb == nil {
		return fmt.Errorf("redis client required")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	if log == nil {
		log = logger.Nop()
	}
	channels := make([]string, 0, len(topics))
	for _, t := range topics {
		channels = append(channels, prefix+t)
	}
	sub := rdb.Subscribe(ctx, channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	log = log.With("service", "RedisEventSubscriber")
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
					log.Warn("bad redis event payload", "error", err, "channel", m.Channel)
					continue
				}
				onMsg(Delivery{Topic: strings.TrimPrefix(m.Channel, prefix), Key: env.Key, Event: env.Event})
			}
		}
	}()
	return nil
}
