package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
)

var OrderStatusAggregateContract = Contract{
	Name:             "Orders.OrderStatusAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns order status progression; cancellation returns stock in the same transaction.",
}

// OrderStatusAggregate owns the order status machine after placement.
//
// Write method failures return *commerce.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type OrderStatusAggregate interface {
	Aggregate

	// TransitionStatus compare-and-sets the order status and applies its side effects.
	TransitionStatus(ctx context.Context, in TransitionOrderStatusInput) (TransitionOrderStatusResult, error)
}

type TransitionOrderStatusInput struct {
	OrderID      uuid.UUID
	ToStatus     commerce.OrderStatus
	Notes        string
	TransitionAt time.Time
}

type TransitionOrderStatusResult struct {
	OrderID       uuid.UUID
	OrderNumber   string
	UserID        uuid.UUID
	FromStatus    commerce.OrderStatus
	Status        commerce.OrderStatus
	PaymentStatus commerce.PaymentStatus
	Restocked     bool
	TransitionAt  time.Time
}
