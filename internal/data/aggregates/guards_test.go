package aggregates

import "testing"

func TestRequireStatusAllowed(t *testing.T) {
	if err := RequireStatusAllowed("confirmed", "pending", "confirmed"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireStatusAllowed("delivered", "pending", "confirmed"); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); err == nil {
		t.Fatalf("expected conflict error")
	}
}
