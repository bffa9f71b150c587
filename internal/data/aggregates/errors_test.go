package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want commerce.ErrorCode
	}{
		{"invariant", InvariantError("broken"), commerce.CodeInvariantViolation},
		{"conflict", ConflictError("stale"), commerce.CodeConflict},
		{"retryable", RetryableError("lock timeout"), commerce.CodeRetryable},
		{"not found", gorm.ErrRecordNotFound, commerce.CodeNotFound},
		{"gorm duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), commerce.CodeConflict},
		{"pg unique", &pgconn.PgError{Code: "23505"}, commerce.CodeConflict},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, commerce.CodeRetryable},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, commerce.CodeInvariantViolation},
		{"deadline", context.DeadlineExceeded, commerce.CodeRetryable},
		{"sqlite busy", errors.New("database is locked"), commerce.CodeRetryable},
		{"unknown", errors.New("boom"), commerce.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("op", tc.in)
			if !commerce.IsCode(got, tc.want) {
				t.Fatalf("code: want=%s got=%q (%v)", tc.want, commerce.CodeOf(got), got)
			}
			if !errors.Is(got, tc.in) {
				t.Fatalf("mapped error must keep its cause: %v", got)
			}
		})
	}
}

func TestMapError_PassthroughStorefrontError(t *testing.T) {
	in := commerce.EmptyCartError("op")
	out := MapError("other", fmt.Errorf("wrapped: %w", in))
	if !commerce.IsCode(out, commerce.CodeEmptyCart) {
		t.Fatalf("expected passthrough, got %v", out)
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil must map to nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Fatalf("gorm duplicate must be a unique violation")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("pg 23505 must be a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) || IsUniqueViolation(nil) {
		t.Fatalf("plain errors are not unique violations")
	}
}
