package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/platform/events"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for realtime message")
	}
	return Message{}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(logger.Nop())
	userID := uuid.New()
	channel := UserChannel(userID)

	clientA := hub.NewClient(userID)
	hub.AddChannel(clientA, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventOrderPlaced, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Message{Channel: channel, Event: EventOrderStatusChanged, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != EventOrderPlaced {
		t.Fatalf("first event: want=%s got=%s", EventOrderPlaced, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != EventOrderStatusChanged {
		t.Fatalf("second event: want=%s got=%s", EventOrderStatusChanged, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewClient(userID)
	hub.AddChannel(clientB, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventOrderStatusChanged})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != EventOrderStatusChanged {
		t.Fatalf("reconnect event: want=%s got=%s", EventOrderStatusChanged, got.Event)
	}
}

func TestHubPublisherRoutesToOwner(t *testing.T) {
	hub := NewHub(logger.Nop())
	owner := uuid.New()
	other := uuid.New()

	ownerClient := hub.NewClient(owner)
	hub.AddChannel(ownerClient, UserChannel(owner))
	otherClient := hub.NewClient(other)
	hub.AddChannel(otherClient, UserChannel(other))

	pub := NewHubPublisher(hub)
	ev := events.OrderStatusChanged{OrderID: uuid.New(), OrderNumber: "ORD-A-BBBBBB", UserID: owner, From: "confirmed", To: "shipped"}
	if err := pub.Publish(context.Background(), events.TopicOrderStatusChanged, ev.OrderNumber, ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got := recvMessage(t, ownerClient.Outbound, time.Second)
	if got.Event != EventOrderStatusChanged {
		t.Fatalf("event: want=%s got=%s", EventOrderStatusChanged, got.Event)
	}
	select {
	case msg := <-otherClient.Outbound:
		t.Fatalf("other user received %+v", msg)
	default:
	}

	if err := pub.Publish(context.Background(), "unrelated.topic", "k", ev); err != nil {
		t.Fatalf("unknown topic should be ignored: %v", err)
	}
	if err := pub.Publish(context.Background(), events.TopicOrderPlaced, "k", map[string]string{}); err == nil {
		t.Fatalf("event without user_id should fail")
	}
}

func TestServeStreamsMessages(t *testing.T) {
	hub := NewHub(logger.Nop())
	userID := uuid.New()
	client := hub.NewClient(userID)
	hub.AddChannel(client, UserChannel(userID))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer hub.CloseClient(client)
		hub.Serve(w, r, client)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type: want=text/event-stream got=%s", ct)
	}

	hub.Relay(events.Delivery{
		Topic: events.TopicOrderPlaced,
		Key:   "ORD-A-CCCCCC",
		Event: json.RawMessage(`{"order_number":"ORD-A-CCCCCC","user_id":"` + userID.String() + `"}`),
	})

	reader := bufio.NewReader(resp.Body)
	var eventName string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if strings.HasPrefix(line, "event: ") {
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		if eventName != string(EventOrderPlaced) {
			t.Fatalf("event: want=%s got=%q", EventOrderPlaced, eventName)
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &payload); err != nil {
			t.Fatalf("decode data %q: %v", line, err)
		}
		if payload["order_number"] != "ORD-A-CCCCCC" || payload["user_id"] != userID.String() {
			t.Fatalf("data must be the order event: %v", payload)
		}
		if _, wrapped := payload["channel"]; wrapped {
			t.Fatalf("data must not carry the hub envelope: %v", payload)
		}
		return
	}
}
