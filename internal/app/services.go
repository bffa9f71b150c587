package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/aggregates"
	"github.com/yungbote/storefront-backend/internal/domain/ordernum"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type Services struct {
	Catalog  services.CatalogService
	Cart     services.CartService
	Checkout services.CheckoutService
	Orders   services.OrderService
	Account  services.AccountService

	CartJanitor *services.CartJanitor
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	checkoutAgg := aggregates.NewCheckoutAggregate(aggregates.CheckoutAggregateDeps{
		Base:     base,
		Carts:    reposet.Carts,
		Products: reposet.Products,
		Orders:   reposet.Orders,
	})
	statusAgg := aggregates.NewOrderStatusAggregate(aggregates.OrderStatusAggregateDeps{
		Base:     base,
		Orders:   reposet.Orders,
		Products: reposet.Products,
	})

	resolver := identity.NewRequestResolver()
	account := services.NewAccountService(log, reposet.Addresses, reposet.Orders, resolver)

	return Services{
		Catalog:  services.NewCatalogService(log, reposet.Products),
		Cart:     services.NewCartService(log, reposet.Carts, reposet.Products, clients.CartCache, resolver, metrics),
		Checkout: services.NewCheckoutService(log, checkoutAgg, ordernum.New(), clients.CartCache, clients.Events, resolver, account, metrics),
		Orders:   services.NewOrderService(log, reposet.Orders, reposet.Products, statusAgg, clients.Events, resolver, metrics),
		Account:  account,

		CartJanitor: services.NewCartJanitor(log, reposet.Carts, cfg.CartJanitorInterval),
	}
}
