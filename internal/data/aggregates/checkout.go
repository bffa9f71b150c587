package aggregates

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/domain/pricing"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

type CheckoutAggregateDeps struct {
	Base BaseDeps

	Carts    repos.CartRepo
	Products repos.ProductRepo
	Orders   repos.OrderRepo
}

type checkoutAggregate struct {
	deps CheckoutAggregateDeps
}

func NewCheckoutAggregate(deps CheckoutAggregateDeps) domainagg.CheckoutAggregate {
	deps.Base = deps.Base.withDefaults()
	return &checkoutAggregate{deps: deps}
}

func (a *checkoutAggregate) Contract() domainagg.Contract {
	return domainagg.CheckoutAggregateContract
}

func (a *checkoutAggregate) PlaceOrder(ctx context.Context, in domainagg.PlaceOrderInput) (domainagg.PlaceOrderResult, error) {
	const op = OpPlaceOrder
	var out domainagg.PlaceOrderResult

	if in.UserID == uuid.Nil {
		return out, commerce.AuthenticationRequiredError(op)
	}
	orderNumber := strings.ToUpper(strings.TrimSpace(in.OrderNumber))
	if orderNumber == "" {
		return out, commerce.ValidationError(op, "order number is required")
	}
	if !commerce.ValidPaymentMethod(in.PaymentMethod) {
		return out, commerce.ValidationError(op, "invalid payment method")
	}
	if a.deps.Carts == nil || a.deps.Products == nil || a.deps.Orders == nil {
		return out, commerce.NewError(commerce.CodeInternal, op, "checkout aggregate repos not configured", nil)
	}
	placedAt := in.PlacedAt.UTC()
	if in.PlacedAt.IsZero() {
		placedAt = time.Now().UTC()
	}
	ownerKey := commerce.UserOwner(in.UserID).Key()

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cart, err := a.deps.Carts.GetByOwnerKey(dbc, ownerKey)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return commerce.EmptyCartError(op)
		}

		products, err := a.deps.Products.GetByIDs(dbc, cart.ProductIDs())
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*types.Product, len(products))
		for _, p := range products {
			if p != nil {
				byID[p.ID] = p
			}
		}

		lines := make([]types.OrderLineItem, 0, len(cart.Items))
		for i, item := range cart.Items {
			p := byID[item.ProductID]
			if p == nil || !p.IsActive {
				name := ""
				if p != nil {
					name = p.Name
				}
				return commerce.ProductUnavailableError(op, name)
			}
			if p.Stock < item.Quantity {
				return commerce.InsufficientStockError(op, p.Name, item.Quantity, p.Stock)
			}
			lines = append(lines, commerce.SnapshotLine(p, item.Quantity, i))
		}

		// Decrement in id order so concurrent checkouts touch rows in the same sequence.
		ordered := make([]types.OrderLineItem, len(lines))
		copy(ordered, lines)
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].ProductID.String() < ordered[j].ProductID.String()
		})
		for _, li := range ordered {
			ok, err := a.deps.Products.DecrementStockIfAvailable(dbc, li.ProductID, li.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				available := 0
				if cur, _ := a.deps.Products.GetByID(dbc, li.ProductID); cur != nil {
					available = cur.Stock
				}
				return commerce.InsufficientStockError(op, li.ProductName, li.Quantity, available)
			}
		}

		totals := pricing.ComputeTotals(commerce.LinesSubtotal(lines))
		order := &types.Order{
			OrderNumber:   orderNumber,
			UserID:        in.UserID,
			Items:         lines,
			Subtotal:      totals.Subtotal,
			Shipping:      totals.Shipping,
			VAT:           totals.VAT,
			Total:         totals.Total,
			Status:        types.OrderPending,
			PaymentStatus: types.PaymentPending,
			PaymentMethod: in.PaymentMethod,
			Notes:         strings.TrimSpace(in.Notes),
			CreatedAt:     placedAt,
			UpdatedAt:     placedAt,
		}
		order.ShippingAddress = datatypes.NewJSONType(in.ShippingAddress.As(commerce.AddressShipping))
		order.BillingAddress = datatypes.NewJSONType(in.BillingAddress.As(commerce.AddressBilling))

		// Payment is captured synchronously, so the order leaves checkout confirmed.
		if err := order.TransitionTo(types.OrderConfirmed); err != nil {
			return InvariantError(err.Error())
		}
		order.PaymentStatus = types.PaymentPaid

		if err := a.deps.Orders.Create(dbc, order); err != nil {
			if IsUniqueViolation(err) {
				return commerce.DuplicateOrderNumberError(op, orderNumber, err)
			}
			return err
		}
		if _, err := a.deps.Carts.DeleteByOwnerKey(dbc, ownerKey); err != nil {
			return err
		}

		out = domainagg.PlaceOrderResult{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Totals:      totals,
			Order:       order,
		}
		return nil
	})
	if err != nil {
		return domainagg.PlaceOrderResult{}, checkoutError(op, err)
	}
	return out, nil
}

// checkoutError keeps typed precondition failures and wraps everything else.
func checkoutError(op string, err error) error {
	if commerce.IsPrecondition(err) || commerce.IsCode(err, commerce.CodeDuplicateOrderNumber) {
		return err
	}
	return commerce.OrderCreationError(op, err)
}
