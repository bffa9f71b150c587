package aggregates_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/storefront-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	repotest "github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

func TestOrderStatusAggregateTransitions(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	log := repotest.Logger(t)
	hooks := aggtest.NewOutcomeRecorder()

	orders := repos.NewOrderRepo(tx, log)
	agg := aggregates.NewOrderStatusAggregate(aggregates.OrderStatusAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:       tx,
			Runner:   aggregates.NewGormTxRunner(tx),
			CASGuard: aggregates.NewCASGuard(tx),
			Hooks:    hooks,
		},
		Orders:   orders,
		Products: repos.NewProductRepo(tx, log),
	})

	ctx := context.Background()
	o := repotest.SeedOrder(t, ctx, tx, uuid.New(), commerce.OrderConfirmed, "350", time.Now().UTC())

	res, err := agg.TransitionStatus(ctx, domainagg.TransitionOrderStatusInput{
		OrderID:  o.ID,
		ToStatus: commerce.OrderProcessing,
		Notes:    "picked",
	})
	if err != nil {
		t.Fatalf("confirmed->processing: %v", err)
	}
	if res.FromStatus != commerce.OrderConfirmed || res.Status != commerce.OrderProcessing {
		t.Fatalf("result: from=%s to=%s", res.FromStatus, res.Status)
	}

	_, err = agg.TransitionStatus(ctx, domainagg.TransitionOrderStatusInput{OrderID: o.ID, ToStatus: commerce.OrderDelivered})
	if !commerce.IsCode(err, commerce.CodeConflict) {
		t.Fatalf("processing->delivered: want conflict, got %v", err)
	}
	if n := hooks.Conflicts(aggregates.OpTransitionStatus); n != 1 {
		t.Fatalf("conflicts: want=1 got=%d", n)
	}

	_, err = agg.TransitionStatus(ctx, domainagg.TransitionOrderStatusInput{OrderID: o.ID, ToStatus: "lost"})
	if !commerce.IsCode(err, commerce.CodeValidation) {
		t.Fatalf("unknown status: want validation, got %v", err)
	}
	_, err = agg.TransitionStatus(ctx, domainagg.TransitionOrderStatusInput{OrderID: uuid.New(), ToStatus: commerce.OrderShipped})
	if !commerce.IsCode(err, commerce.CodeNotFound) {
		t.Fatalf("missing order: want not_found, got %v", err)
	}

	stored, err := orders.GetByID(dbctx.Context{Ctx: ctx, Tx: tx}, o.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != commerce.OrderProcessing || stored.Notes != "picked" {
		t.Fatalf("stored: status=%s notes=%q", stored.Status, stored.Notes)
	}
}

func TestOrderStatusCancelRestocksAndRefunds(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	a := repotest.SeedProduct(t, ctx, f.db, repotest.WithStock(5))
	b := repotest.SeedProduct(t, ctx, f.db, repotest.WithStock(2))
	repotest.SeedCart(t, ctx, f.db, commerce.UserOwner(userID),
		repotest.CartLine{ProductID: a.ID, Quantity: 3},
		repotest.CartLine{ProductID: b.ID, Quantity: 2},
	)
	placed, err := f.agg.PlaceOrder(ctx, f.input(t, userID))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	agg := aggregates.NewOrderStatusAggregate(aggregates.OrderStatusAggregateDeps{
		Base:     aggregates.BaseDeps{DB: f.db, Hooks: f.hooks},
		Orders:   f.orders,
		Products: f.products,
	})
	res, err := agg.TransitionStatus(ctx, domainagg.TransitionOrderStatusInput{
		OrderID:  placed.OrderID,
		ToStatus: commerce.OrderCancelled,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !res.Restocked || res.PaymentStatus != commerce.PaymentRefunded {
		t.Fatalf("result: restocked=%v payment=%s", res.Restocked, res.PaymentStatus)
	}
	if s := f.stock(t, a.ID); s != 5 {
		t.Fatalf("stock A: want=5 got=%d", s)
	}
	if s := f.stock(t, b.ID); s != 2 {
		t.Fatalf("stock B: want=2 got=%d", s)
	}

	order, _ := f.orders.GetByID(dbctx.New(ctx), placed.OrderID)
	if order.Status != commerce.OrderCancelled || order.PaymentStatus != commerce.PaymentRefunded {
		t.Fatalf("stored: %s/%s", order.Status, order.PaymentStatus)
	}

	// Cancelled is terminal; a second cancel must not restock again.
	_, err = agg.TransitionStatus(ctx, domainagg.TransitionOrderStatusInput{OrderID: placed.OrderID, ToStatus: commerce.OrderCancelled})
	if !commerce.IsCode(err, commerce.CodeConflict) {
		t.Fatalf("second cancel: want conflict, got %v", err)
	}
	if s := f.stock(t, a.ID); s != 5 {
		t.Fatalf("stock A after second cancel: want=5 got=%d", s)
	}
	if got := f.hooks.Outcomes(aggregates.OpTransitionStatus); len(got) != 2 || got[0] != "success" || got[1] != string(commerce.CodeConflict) {
		t.Fatalf("transition outcomes: %v", got)
	}
}
