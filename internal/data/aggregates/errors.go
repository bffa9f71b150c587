package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
)

var (
	// ErrInvariant indicates invariant rule violation.
	ErrInvariant = errors.New("aggregate invariant violation")
	// ErrConflict indicates optimistic/concurrency conflict.
	ErrConflict = errors.New("aggregate conflict")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("aggregate retryable")
)

// InvariantError tags an error as invariant violation.
func InvariantError(msg string) error {
	return errors.Join(ErrInvariant, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as conflict failure.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// RetryableError tags an error as retryable failure.
func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// IsUniqueViolation reports unique index failures from either driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// MapError maps infrastructure failures into storefront error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *commerce.Error
	if errors.As(err, &ce) {
		return err
	}
	switch {
	case errors.Is(err, ErrInvariant):
		return commerce.Wrap(commerce.CodeInvariantViolation, op, err)
	case errors.Is(err, ErrConflict):
		return commerce.Wrap(commerce.CodeConflict, op, err)
	case errors.Is(err, ErrRetryable):
		return commerce.Wrap(commerce.CodeRetryable, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return commerce.Wrap(commerce.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return commerce.Wrap(commerce.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return commerce.Wrap(commerce.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return commerce.Wrap(commerce.CodeConflict, op, err) // unique_violation
		case "23503", "23514":
			return commerce.Wrap(commerce.CodeInvariantViolation, op, err) // foreign_key/check violation
		case "40001", "40P01", "55P03":
			return commerce.Wrap(commerce.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return commerce.Wrap(commerce.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return commerce.Wrap(commerce.CodeRetryable, op, err)
	default:
		return commerce.Wrap(commerce.CodeInternal, op, err)
	}
}
