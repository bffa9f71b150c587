package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/aggregates"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	repotest "github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/cache"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type published struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.topic)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	log       *logger.Logger
	products  repos.ProductRepo
	carts     repos.CartRepo
	orders    repos.OrderRepo
	addresses repos.AddressRepo
	publisher *recordingPublisher

	cart     CartService
	checkout CheckoutService
	order    OrderService
	catalog  CatalogService
	account  AccountService
}

func newFixture(t *testing.T, cartCache cache.CartCache) *fixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	f := &fixture{
		db:        db,
		log:       log,
		products:  repos.NewProductRepo(db, log),
		carts:     repos.NewCartRepo(db, log),
		orders:    repos.NewOrderRepo(db, log),
		addresses: repos.NewAddressRepo(db, log),
		publisher: &recordingPublisher{},
	}
	base := aggregates.BaseDeps{DB: db, Log: log}
	checkoutAgg := aggregates.NewCheckoutAggregate(aggregates.CheckoutAggregateDeps{
		Base:     base,
		Carts:    f.carts,
		Products: f.products,
		Orders:   f.orders,
	})
	statusAgg := aggregates.NewOrderStatusAggregate(aggregates.OrderStatusAggregateDeps{
		Base:     base,
		Orders:   f.orders,
		Products: f.products,
	})
	f.cart = NewCartService(log, f.carts, f.products, cartCache, nil, nil)
	f.account = NewAccountService(log, f.addresses, f.orders, nil)
	f.checkout = NewCheckoutService(log, checkoutAgg, nil, cartCache, f.publisher, nil, f.account, nil)
	f.order = NewOrderService(log, f.orders, f.products, statusAgg, f.publisher, nil, nil)
	f.catalog = NewCatalogService(log, f.products)
	return f
}

func userCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

func guestCtx(session string) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{CartSession: session})
}

func adminCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID, Role: "admin"})
}

func testAddress() commerce.Address {
	return commerce.Address{
		FirstName: "Alexei",
		LastName:  "Ward",
		Address1:  "1137 Williams Avenue",
		City:      "New York",
		State:     "NY",
		ZipCode:   "10001",
		Country:   "United States",
		Phone:     "+12025550136",
	}
}

func wantCode(t *testing.T, what string, err error, code commerce.ErrorCode) {
	t.Helper()
	if !commerce.IsCode(err, code) {
		t.Fatalf("%s: want=%s got=%v", what, code, err)
	}
}
