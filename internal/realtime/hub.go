// Package realtime streams order updates to connected shoppers over SSE.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Event string

const (
	EventOrderPlaced        Event = "OrderPlaced"
	EventOrderStatusChanged Event = "OrderStatusChanged"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// UserChannel is the channel every stream of a user subscribes to.
func UserChannel(userID uuid.UUID) string { return "user:" + userID.String() }

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan Message
	done     chan struct{}
	once     sync.Once
}

type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
	heartbeat     time.Duration
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "RealtimeHub"),
		subscriptions: make(map[string]map[*Client]bool),
		heartbeat:     15 * time.Second,
	}
}

func (h *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan Message, 16),
		done:     make(chan struct{}),
	}
}

func (h *Hub) AddChannel(c *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	c.Channels[channel] = true
	clients, ok := h.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]bool)
		h.subscriptions[channel] = clients
	}
	clients[c] = true
	h.log.Debug("client subscribed", "client_id", c.ID, "channel", channel)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range c.Channels {
		if subs, ok := h.subscriptions[ch]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.subscriptions, ch)
			}
		}
	}
	c.Channels = make(map[string]bool)
}

// Subscribers reports how many clients listen on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[channel])
}

// Broadcast never blocks; a client with a full buffer misses the message.
func (h *Hub) Broadcast(msg Message) {
	if msg.Channel == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subscriptions[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			h.log.Warn("dropping realtime message; outbound buffer full", "client_id", c.ID)
		}
	}
}

// Serve writes the client's messages as SSE until the request ends or the client is closed.
// Each frame names the event and carries the event payload as data.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, c *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-c.Outbound:
			if !ok {
				return
			}
			raw, err := json.Marshal(msg.Data)
			if err != nil {
				h.log.Warn("failed to marshal realtime message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, raw)
			flusher.Flush()
		}
	}
}

// CloseClient unsubscribes c. It is safe to call more than once.
func (h *Hub) CloseClient(c *Client) {
	c.once.Do(func() {
		h.removeClient(c)
		close(c.done)
	})
}
