package sendgrid

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/storefront-backend/internal/platform/events"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

const confirmationTimeout = 2 * time.Minute

type confirmationPublisher struct {
	log       *logger.Logger
	client    Client
	storeName string
	wg        sync.WaitGroup
}

// NewConfirmationPublisher emails the shopper when an order is placed with a contact
// address. Sends run in the background; Close waits for them.
func NewConfirmationPublisher(log *logger.Logger, client Client, storeName string) events.Publisher {
	if strings.TrimSpace(storeName) == "" {
		storeName = "Audiophile"
	}
	return &confirmationPublisher{
		log:       log.With("service", "OrderConfirmationMailer"),
		client:    client,
		storeName: storeName,
	}
}

func (p *confirmationPublisher) Publish(ctx context.Context, topic, _ string, event any) error {
	if topic != events.TopicOrderPlaced {
		return nil
	}
	var ev events.OrderPlaced
	switch v := event.(type) {
	case events.OrderPlaced:
		ev = v
	case *events.OrderPlaced:
		if v == nil {
			return nil
		}
		ev = *v
	default:
		return nil
	}
	if strings.TrimSpace(ev.Email) == "" {
		return nil
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), confirmationTimeout)
		defer cancel()
		res, err := p.client.Send(sendCtx, confirmationEmail(p.storeName, ev))
		if err != nil {
			p.log.Warn("order confirmation email failed", "order_number", ev.OrderNumber, "error", err)
			return
		}
		p.log.Info("order confirmation email sent", "order_number", ev.OrderNumber, "message_id", res.MessageID)
	}()
	return nil
}

func (p *confirmationPublisher) Close() error {
	p.wg.Wait()
	return nil
}

func confirmationEmail(storeName string, ev events.OrderPlaced) SendEmailRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for shopping with %s.\n\n", storeName)
	fmt.Fprintf(&b, "Order number: %s\n", ev.OrderNumber)
	fmt.Fprintf(&b, "Items: %d\n", ev.ItemCount)
	fmt.Fprintf(&b, "Total: $%s\n", ev.Total.StringFixed(2))
	fmt.Fprintf(&b, "Placed at: %s\n", ev.PlacedAt.UTC().Format(time.RFC1123))
	return SendEmailRequest{
		To:         []EmailAddress{{Email: ev.Email}},
		Subject:    fmt.Sprintf("Your %s order %s is confirmed", storeName, ev.OrderNumber),
		Text:       b.String(),
		Categories: []string{"order-confirmation"},
		CustomArgs: map[string]string{"order_id": ev.OrderID.String()},
	}
}
