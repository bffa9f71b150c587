package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/domain/pricing"
)

var CheckoutAggregateContract = Contract{
	Name:             "Orders.CheckoutAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns the cart to order transition: stock decrement, order creation and cart removal commit together.",
}

// CheckoutAggregate turns a shopper's cart into an immutable order.
//
// Write method failures return *commerce.Error with codes:
// CodeEmptyCart, CodeProductUnavailable, CodeInsufficientStock, CodeDuplicateOrderNumber,
// CodeValidation, CodeRetryable, CodeOrderCreation.
type CheckoutAggregate interface {
	Aggregate

	// PlaceOrder atomically decrements stock, persists the order and deletes the cart.
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderResult, error)
}

type PlaceOrderInput struct {
	UserID          uuid.UUID
	OrderNumber     string
	ShippingAddress commerce.Address
	BillingAddress  commerce.Address
	PaymentMethod   commerce.PaymentMethod
	Notes           string
	PlacedAt        time.Time
}

type PlaceOrderResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	Totals      pricing.Totals
	Order       *commerce.Order
}
