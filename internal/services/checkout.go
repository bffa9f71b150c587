package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/domain/ordernum"
	"github.com/yungbote/storefront-backend/internal/domain/pricing"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/cache"
	"github.com/yungbote/storefront-backend/internal/platform/events"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// CardDetails are validated but never stored or logged.
type CardDetails struct {
	Number string `json:"card_number" validate:"required,min=12,max=19,numeric"`
	Expiry string `json:"expiry_date" validate:"required,max=7"`
	CVV    string `json:"cvv" validate:"required,min=3,max=4,numeric"`
	Name   string `json:"card_name" validate:"required,max=100"`
}

// CheckoutInput takes addresses inline or as address book ids. With neither,
// the caller's default shipping and billing entries apply.
type CheckoutInput struct {
	ShippingAddress   commerce.Address       `json:"shipping_address" validate:"required"`
	ShippingAddressID *uuid.UUID             `json:"shipping_address_id,omitempty"`
	BillingAddress    *commerce.Address      `json:"billing_address,omitempty"`
	BillingAddressID  *uuid.UUID             `json:"billing_address_id,omitempty"`
	SameAsShipping    bool                   `json:"same_as_shipping"`
	PaymentMethod     commerce.PaymentMethod `json:"payment_method" validate:"required,oneof=credit-card paypal bank-transfer"`
	Card              *CardDetails           `json:"card,omitempty" validate:"required_if=PaymentMethod credit-card"`
	Notes             string                 `json:"notes,omitempty" validate:"max=500"`
	Email             string                 `json:"email,omitempty" validate:"omitempty,email"`
}

type CheckoutResult struct {
	OrderID     uuid.UUID      `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	Totals      pricing.Totals `json:"totals"`
}

type CheckoutService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
}

// OrderNumberSource mints candidate order numbers.
type OrderNumberSource interface {
	Next() (string, error)
}

type checkoutService struct {
	log       *logger.Logger
	aggregate domainagg.CheckoutAggregate
	numbers   OrderNumberSource
	cache     cache.CartCache
	events    events.Publisher
	identity  identity.Resolver
	book      AddressBook
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewCheckoutService(
	baseLog *logger.Logger,
	aggregate domainagg.CheckoutAggregate,
	numbers OrderNumberSource,
	cartCache cache.CartCache,
	publisher events.Publisher,
	resolver identity.Resolver,
	book AddressBook,
	metrics *observability.Metrics,
) CheckoutService {
	if numbers == nil {
		numbers = ordernum.New()
	}
	if cartCache == nil {
		cartCache = cache.Noop()
	}
	if publisher == nil {
		publisher = events.Noop()
	}
	if resolver == nil {
		resolver = identity.NewRequestResolver()
	}
	return &checkoutService{
		log:       baseLog.With("service", "CheckoutService"),
		aggregate: aggregate,
		numbers:   numbers,
		cache:     cartCache,
		events:    publisher,
		identity:  resolver,
		book:      book,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *checkoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	const op = "CheckoutService.Checkout"
	ctx, span := observability.Tracer().Start(ctx, op)
	defer span.End()

	res, err := s.checkout(ctx, op, in)
	if err != nil {
		code := commerce.CodeOf(err)
		if code == "" {
			code = commerce.CodeInternal
		}
		s.metrics.IncCheckout(string(code))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
		return nil, err
	}
	s.metrics.IncCheckout("success")
	span.SetAttributes(
		attribute.String("order.id", res.OrderID.String()),
		attribute.String("order.number", res.OrderNumber),
	)
	return res, nil
}

func (s *checkoutService) checkout(ctx context.Context, op string, in CheckoutInput) (*CheckoutResult, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	in.PaymentMethod = commerce.PaymentMethod(strings.ToLower(strings.TrimSpace(string(in.PaymentMethod))))
	if in.PaymentMethod != commerce.PaymentCreditCard {
		in.Card = nil
	}
	if err := s.resolveSavedAddresses(ctx, op, userID, &in); err != nil {
		return nil, err
	}
	if in.SameAsShipping || in.BillingAddress == nil {
		if !in.SameAsShipping {
			return nil, commerce.ValidationError(op, "billing_address is required")
		}
		billing := in.ShippingAddress
		in.BillingAddress = &billing
	}
	if err := commerce.Validate(op, in); err != nil {
		return nil, err
	}

	placedAt := s.now()
	var result domainagg.PlaceOrderResult
	// A colliding order number is minted again once; a second collision is surfaced.
	for attempt := 0; attempt < 2; attempt++ {
		number, nerr := s.numbers.Next()
		if nerr != nil {
			return nil, commerce.OrderCreationError(op, nerr)
		}
		result, err = s.aggregate.PlaceOrder(ctx, domainagg.PlaceOrderInput{
			UserID:          userID,
			OrderNumber:     number,
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  *in.BillingAddress,
			PaymentMethod:   in.PaymentMethod,
			Notes:           in.Notes,
			PlacedAt:        placedAt,
		})
		if err == nil || !commerce.IsCode(err, commerce.CodeDuplicateOrderNumber) {
			break
		}
		s.log.Warn("order number collision, retrying", "order_number", number, "attempt", attempt+1)
	}
	if err != nil {
		return nil, err
	}

	ownerKey := commerce.UserOwner(userID).Key()
	if cerr := s.cache.Delete(ctx, ownerKey); cerr != nil {
		s.log.Warn("cart cache invalidation failed", "owner_key", ownerKey, "error", cerr)
	}
	s.publishPlaced(ctx, userID, in.Email, result, placedAt)

	s.log.Info("order placed",
		"order_id", result.OrderID,
		"order_number", result.OrderNumber,
		"user_id", userID,
		"total", result.Totals.Total.StringFixed(2),
	)
	return &CheckoutResult{
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		Totals:      result.Totals,
	}, nil
}

// resolveSavedAddresses fills addresses from the caller's address book.
// An id wins over an inline address; a missing address falls back to the default entry.
func (s *checkoutService) resolveSavedAddresses(ctx context.Context, op string, userID uuid.UUID, in *CheckoutInput) error {
	if s.book == nil {
		if in.ShippingAddressID != nil || in.BillingAddressID != nil {
			return commerce.ValidationError(op, "saved addresses are not available")
		}
		return nil
	}
	if in.ShippingAddressID != nil {
		addr, err := s.book.SavedAddress(ctx, userID, *in.ShippingAddressID)
		if err != nil {
			return err
		}
		in.ShippingAddress = addr
	} else if in.ShippingAddress == (commerce.Address{}) {
		def, err := s.book.DefaultAddress(ctx, userID, commerce.AddressShipping)
		if err != nil {
			return err
		}
		if def != nil {
			in.ShippingAddress = *def
		}
	}
	if in.SameAsShipping {
		return nil
	}
	if in.BillingAddressID != nil {
		addr, err := s.book.SavedAddress(ctx, userID, *in.BillingAddressID)
		if err != nil {
			return err
		}
		in.BillingAddress = &addr
	} else if in.BillingAddress == nil {
		def, err := s.book.DefaultAddress(ctx, userID, commerce.AddressBilling)
		if err != nil {
			return err
		}
		in.BillingAddress = def
	}
	return nil
}

// publishPlaced runs after commit; a failed publish never fails the checkout.
func (s *checkoutService) publishPlaced(ctx context.Context, userID uuid.UUID, email string, res domainagg.PlaceOrderResult, placedAt time.Time) {
	itemCount := 0
	if res.Order != nil {
		for _, li := range res.Order.Items {
			itemCount += li.Quantity
		}
	}
	evt := events.OrderPlaced{
		OrderID:     res.OrderID,
		OrderNumber: res.OrderNumber,
		UserID:      userID,
		Total:       res.Totals.Total,
		ItemCount:   itemCount,
		PlacedAt:    placedAt,
		Email:       strings.TrimSpace(email),
	}
	if err := s.events.Publish(ctx, events.TopicOrderPlaced, res.OrderID.String(), evt); err != nil {
		s.metrics.IncEventPublished(events.TopicOrderPlaced, "error")
		s.log.Warn("publish order placed failed", "order_id", res.OrderID, "error", err)
		return
	}
	s.metrics.IncEventPublished(events.TopicOrderPlaced, "ok")
}
