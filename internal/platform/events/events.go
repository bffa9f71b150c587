// Package events publishes order domain events after a transaction commits.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TopicOrderPlaced        = "orders.placed"
	TopicOrderStatusChanged = "orders.status_changed"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type OrderPlaced struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      uuid.UUID       `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	PlacedAt    time.Time       `json:"placed_at"`
	// Email is the checkout contact address. It stays in process and is never serialized.
	Email       string          `json:"-"`
}

type OrderStatusChanged struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        uuid.UUID `json:"user_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	PaymentStatus string    `json:"payment_status"`
	ChangedAt     time.Time `json:"changed_at"`
}

type noopPublisher struct{}

func Noop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (noopPublisher) Close() error                                       { return nil }

type fanout []Publisher

// Fanout publishes every event to each publisher in order and joins their errors.
func Fanout(pubs ...Publisher) Publisher {
	out := make(fanout, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f fanout) Publish(ctx context.Context, topic, key string, event any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, topic, key, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
