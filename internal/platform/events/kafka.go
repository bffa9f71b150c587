package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type kafkaPublisher struct {
	log    *logger.Logger
	writer *kafkaGo.Writer
}

// NewKafkaPublisher keeps one writer for all topics; the topic is set per message.
func NewKafkaPublisher(log *logger.Logger, brokers []string) (Publisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(brokers) == 0 {
		return nil, fmt.Errorf("missing kafka brokers")
	}
	return &kafkaPublisher{
		log: log.With("service", "KafkaEventPublisher"),
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Balancer:               &kafkaGo.Hash{},
			RequiredAcks:           kafkaGo.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
