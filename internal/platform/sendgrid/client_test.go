package sendgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/storefront-backend/internal/platform/events"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

func TestSendPostsMailAndRetries(t *testing.T) {
	var calls int32
	var got mailSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("path: want=/v3/mail/send got=%s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key" {
			t.Errorf("auth: want=Bearer key got=%s", auth)
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{
		APIKey:           "key",
		BaseURL:          srv.URL,
		DefaultFromEmail: "orders@example.com",
		MaxRetries:       2,
		RetryBackoff:     time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "buyer@example.com"}},
		Subject: "hello",
		Text:    "body",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "msg-1" || res.StatusCode != http.StatusAccepted {
		t.Fatalf("result: got=%+v", res)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("calls: want=2 got=%d", n)
	}
	if got.From.Email != "orders@example.com" {
		t.Fatalf("from: want=orders@example.com got=%s", got.From.Email)
	}
	if len(got.Personalizations) != 1 || got.Personalizations[0].To[0].Email != "buyer@example.com" {
		t.Fatalf("personalizations: got=%+v", got.Personalizations)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad to"}]}`))
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "key", BaseURL: srv.URL, DefaultFromEmail: "a@example.com", MaxRetries: 3, RetryBackoff: time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Send(context.Background(), SendEmailRequest{To: []EmailAddress{{Email: "x@example.com"}}, Subject: "s", Text: "t"})
	if err == nil || err.Error() != "sendgrid http 400: bad to" {
		t.Fatalf("err: got=%v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls: want=1 got=%d", n)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

type recordingClient struct {
	sent chan SendEmailRequest
}

func (r *recordingClient) Send(_ context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	r.sent <- req
	return &SendEmailResult{StatusCode: http.StatusAccepted}, nil
}

func TestConfirmationPublisherSendsOnlyWithEmail(t *testing.T) {
	rc := &recordingClient{sent: make(chan SendEmailRequest, 4)}
	pub := NewConfirmationPublisher(logger.Nop(), rc, "")
	ctx := context.Background()

	ev := events.OrderPlaced{
		OrderID:     uuid.New(),
		OrderNumber: "ORD-A-DDDDDD",
		UserID:      uuid.New(),
		Total:       decimal.RequireFromString("350"),
		ItemCount:   3,
		PlacedAt:    time.Now().UTC(),
	}
	if err := pub.Publish(ctx, events.TopicOrderPlaced, ev.OrderNumber, ev); err != nil {
		t.Fatalf("Publish without email: %v", err)
	}
	ev.Email = "buyer@example.com"
	if err := pub.Publish(ctx, events.TopicOrderStatusChanged, ev.OrderNumber, ev); err != nil {
		t.Fatalf("Publish other topic: %v", err)
	}
	if err := pub.Publish(ctx, events.TopicOrderPlaced, ev.OrderNumber, ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if n := len(rc.sent); n != 1 {
		t.Fatalf("sent: want=1 got=%d", n)
	}
	req := <-rc.sent
	if req.To[0].Email != "buyer@example.com" {
		t.Fatalf("to: got=%s", req.To[0].Email)
	}
	if req.Subject != "Your Audiophile order ORD-A-DDDDDD is confirmed" {
		t.Fatalf("subject: got=%s", req.Subject)
	}
}
