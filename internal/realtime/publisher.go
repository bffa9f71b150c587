package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/platform/events"
)

var topicEvents = map[string]Event{
	events.TopicOrderPlaced:        EventOrderPlaced,
	events.TopicOrderStatusChanged: EventOrderStatusChanged,
}

// Topics lists the bus topics the hub relays.
func Topics() []string {
	return []string{events.TopicOrderPlaced, events.TopicOrderStatusChanged}
}

type hubPublisher struct {
	hub *Hub
}

// NewHubPublisher delivers order events straight to the local hub.
func NewHubPublisher(hub *Hub) events.Publisher {
	return &hubPublisher{hub: hub}
}

func (p *hubPublisher) Publish(_ context.Context, topic, _ string, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.hub.relay(topic, raw)
}

func (p *hubPublisher) Close() error { return nil }

// Relay turns a bus delivery into a hub broadcast on the owner's channel.
func (h *Hub) Relay(d events.Delivery) {
	if err := h.relay(d.Topic, d.Event); err != nil {
		h.log.Warn("realtime relay skipped", "topic", d.Topic, "error", err)
	}
}

func (h *Hub) relay(topic string, raw json.RawMessage) error {
	ev, ok := topicEvents[topic]
	if !ok {
		return nil
	}
	var owner struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.Unmarshal(raw, &owner); err != nil {
		return fmt.Errorf("decode owner: %w", err)
	}
	if owner.UserID == uuid.Nil {
		return fmt.Errorf("event without user_id")
	}
	h.Broadcast(Message{Channel: UserChannel(owner.UserID), Event: ev, Data: raw})
	return nil
}
