package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

type OrderStatusAggregateDeps struct {
	Base BaseDeps

	Orders   repos.OrderRepo
	Products repos.ProductRepo
}

type orderStatusAggregate struct {
	deps OrderStatusAggregateDeps
}

func NewOrderStatusAggregate(deps OrderStatusAggregateDeps) domainagg.OrderStatusAggregate {
	deps.Base = deps.Base.withDefaults()
	return &orderStatusAggregate{deps: deps}
}

func (a *orderStatusAggregate) Contract() domainagg.Contract {
	return domainagg.OrderStatusAggregateContract
}

func (a *orderStatusAggregate) TransitionStatus(ctx context.Context, in domainagg.TransitionOrderStatusInput) (domainagg.TransitionOrderStatusResult, error) {
	const op = OpTransitionStatus
	var out domainagg.TransitionOrderStatusResult

	if in.OrderID == uuid.Nil {
		return out, commerce.ValidationError(op, "missing order_id")
	}
	to := commerce.OrderStatus(strings.ToLower(strings.TrimSpace(string(in.ToStatus))))
	if !commerce.ValidOrderStatus(to) {
		return out, commerce.ValidationError(op, fmt.Sprintf("invalid order status %q", in.ToStatus))
	}
	notes := strings.TrimSpace(in.Notes)
	if len(notes) > commerce.MaxOrderNotes {
		return out, commerce.ValidationError(op, fmt.Sprintf("notes must be at most %d characters", commerce.MaxOrderNotes))
	}
	if a.deps.Orders == nil || a.deps.Products == nil {
		return out, commerce.NewError(commerce.CodeInternal, op, "order status aggregate repos not configured", nil)
	}
	transitionAt := in.TransitionAt.UTC()
	if in.TransitionAt.IsZero() {
		transitionAt = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		order, err := a.deps.Orders.GetByID(dbc, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return commerce.NotFoundError(op, "order")
		}
		from := order.Status
		if err := order.TransitionTo(to); err != nil {
			return err
		}

		updates := map[string]any{
			"status":     string(to),
			"updated_at": transitionAt,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		paymentStatus := order.PaymentStatus
		if to == types.OrderCancelled && paymentStatus == types.PaymentPaid {
			paymentStatus = types.PaymentRefunded
			updates["payment_status"] = string(paymentStatus)
		}

		allowed := make([]string, 0, 4)
		for _, s := range commerce.PredecessorsOf(to) {
			allowed = append(allowed, string(s))
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, types.Order{}.TableName(), order.ID, allowed, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, fmt.Sprintf("order %s changed status concurrently", order.OrderNumber)); err != nil {
			return err
		}

		restocked := false
		if to == types.OrderCancelled {
			for _, li := range order.Items {
				if err := a.deps.Products.IncrementStock(dbc, li.ProductID, li.Quantity); err != nil {
					return err
				}
			}
			restocked = len(order.Items) > 0
		}

		out = domainagg.TransitionOrderStatusResult{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			UserID:        order.UserID,
			FromStatus:    from,
			Status:        to,
			PaymentStatus: paymentStatus,
			Restocked:     restocked,
			TransitionAt:  transitionAt,
		}
		return nil
	})
	if err != nil {
		return domainagg.TransitionOrderStatusResult{}, err
	}
	return out, nil
}
