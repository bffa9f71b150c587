package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	repotest "github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/cache"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

func TestCartService_AddUpdateRemove(t *testing.T) {
	f := newFixture(t, nil)
	ctx := userCtx(uuid.New())
	a := repotest.SeedProduct(t, context.Background(), f.db, repotest.WithPrice("100"), repotest.WithName("XX99 Mark II"))
	b := repotest.SeedProduct(t, context.Background(), f.db, repotest.WithPrice("50"))

	if _, err := f.cart.AddItem(ctx, a.ID, 2); err != nil {
		t.Fatalf("AddItem a: %v", err)
	}
	if _, err := f.cart.AddItem(ctx, b.ID, 0); err != nil {
		t.Fatalf("AddItem b: %v", err)
	}
	v, err := f.cart.AddItem(ctx, a.ID, 1)
	if err != nil {
		t.Fatalf("AddItem a again: %v", err)
	}
	if len(v.Items) != 2 || v.Items[0].ProductID != a.ID || v.Items[0].Quantity != 3 || v.Items[1].Quantity != 1 {
		t.Fatalf("items: got=%+v", v.Items)
	}
	if v.TotalItemCount != 4 {
		t.Fatalf("TotalItemCount: want=4 got=%d", v.TotalItemCount)
	}
	if v.Items[0].Name != "XX99 Mark II" || !v.Items[0].Available || v.Items[0].LineTotal.StringFixed(2) != "300.00" {
		t.Fatalf("line view: got=%+v", v.Items[0])
	}
	if got := v.Totals.Total.StringFixed(2); got != "470.00" {
		t.Fatalf("total: want=470.00 got=%s", got)
	}

	v, err = f.cart.UpdateQuantity(ctx, a.ID, 0)
	if err != nil {
		t.Fatalf("UpdateQuantity 0: %v", err)
	}
	if len(v.Items) != 1 || v.Items[0].ProductID != b.ID {
		t.Fatalf("after removal via update: got=%+v", v.Items)
	}

	v, err = f.cart.RemoveItem(ctx, uuid.New())
	if err != nil || len(v.Items) != 1 {
		t.Fatalf("RemoveItem absent: items=%d err=%v", len(v.Items), err)
	}

	totals, err := f.cart.GetTotals(ctx)
	if err != nil {
		t.Fatalf("GetTotals: %v", err)
	}
	if totals.Subtotal.StringFixed(2) != "50.00" || totals.Total.StringFixed(2) != "110.00" {
		t.Fatalf("totals: got=%+v", totals)
	}
}

func TestCartService_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := userCtx(uuid.New())
	p := repotest.SeedProduct(t, context.Background(), f.db)

	_, err := f.cart.AddItem(ctx, uuid.New(), 1)
	wantCode(t, "unknown product", err, commerce.CodeNotFound)

	_, err = f.cart.AddItem(ctx, p.ID, 100)
	wantCode(t, "quantity 100", err, commerce.CodeValidation)

	if _, err := f.cart.AddItem(ctx, p.ID, 98); err != nil {
		t.Fatalf("AddItem 98: %v", err)
	}
	_, err = f.cart.AddItem(ctx, p.ID, 2)
	wantCode(t, "line over 99", err, commerce.CodeValidation)

	_, err = f.cart.UpdateQuantity(ctx, p.ID, 100)
	wantCode(t, "update over 99", err, commerce.CodeValidation)

	v, err := f.cart.GetCart(ctx)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if v.Items[0].Quantity != 98 {
		t.Fatalf("quantity after rejected ops: want=98 got=%d", v.Items[0].Quantity)
	}
}

func TestCartService_OwnerResolution(t *testing.T) {
	f := newFixture(t, nil)
	p := repotest.SeedProduct(t, context.Background(), f.db)

	_, err := f.cart.GetCart(context.Background())
	wantCode(t, "no identity", err, commerce.CodeAuthenticationRequired)

	guest := guestCtx("guest-token")
	if _, err := f.cart.AddItem(guest, p.ID, 2); err != nil {
		t.Fatalf("guest AddItem: %v", err)
	}
	user := userCtx(uuid.New())
	v, err := f.cart.GetCart(user)
	if err != nil {
		t.Fatalf("user GetCart: %v", err)
	}
	if len(v.Items) != 0 {
		t.Fatalf("user must not see guest cart: got=%+v", v.Items)
	}
	v, err = f.cart.GetCart(guest)
	if err != nil || v.TotalItemCount != 2 {
		t.Fatalf("guest GetCart: count=%d err=%v", v.TotalItemCount, err)
	}

	if err := f.cart.ClearCart(guest); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	v, err = f.cart.GetCart(guest)
	if err != nil || len(v.Items) != 0 {
		t.Fatalf("after clear: items=%d err=%v", len(v.Items), err)
	}
}

func TestCartService_ExpiredCartStartsOver(t *testing.T) {
	f := newFixture(t, nil)
	userID := uuid.New()
	p := repotest.SeedProduct(t, context.Background(), f.db)
	c := repotest.SeedCart(t, context.Background(), f.db, commerce.UserOwner(userID),
		repotest.CartLine{ProductID: p.ID, Quantity: 5})
	if err := f.db.Model(&commerce.Cart{}).Where("id = ?", c.ID).
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("expire cart: %v", err)
	}

	ctx := userCtx(userID)
	v, err := f.cart.GetCart(ctx)
	if err != nil || len(v.Items) != 0 {
		t.Fatalf("expired cart read: items=%d err=%v", len(v.Items), err)
	}
	v, err = f.cart.AddItem(ctx, p.ID, 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if v.TotalItemCount != 1 {
		t.Fatalf("expired lines must not carry over: got=%d", v.TotalItemCount)
	}
}

func TestCartService_CacheReadThroughAndInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f := newFixture(t, cache.NewRedisCache(client, time.Minute))

	userID := uuid.New()
	ctx := userCtx(userID)
	key := "cart:" + commerce.UserOwner(userID).Key()
	p := repotest.SeedProduct(t, context.Background(), f.db, repotest.WithPrice("10"))

	if _, err := f.cart.AddItem(ctx, p.ID, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("mutation must leave the cache empty")
	}
	if _, err := f.cart.GetCart(ctx); err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !mr.Exists(key) {
		t.Fatalf("read must fill the cache")
	}

	// Second read is served from the cache even though the row is gone.
	if _, err := f.carts.DeleteByOwnerKey(dbctx.New(context.Background()), commerce.UserOwner(userID).Key()); err != nil {
		t.Fatalf("delete row: %v", err)
	}
	v, err := f.cart.GetCart(ctx)
	if err != nil || v.TotalItemCount != 1 {
		t.Fatalf("cached read: count=%d err=%v", v.TotalItemCount, err)
	}

	if _, err := f.cart.AddItem(ctx, p.ID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("AddItem must invalidate")
	}
	v, err = f.cart.GetCart(ctx)
	if err != nil || v.TotalItemCount != 2 {
		t.Fatalf("fresh read: count=%d err=%v", v.TotalItemCount, err)
	}
}
