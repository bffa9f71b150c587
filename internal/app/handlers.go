package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/storefront-backend/internal/http/handlers"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Product  *httpH.ProductHandler
	Cart     *httpH.CartHandler
	Checkout *httpH.CheckoutHandler
	Order    *httpH.OrderHandler
	Admin    *httpH.AdminHandler
	Realtime *httpH.RealtimeHandler
	Account  *httpH.AccountHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Product:  httpH.NewProductHandler(services.Catalog),
		Cart:     httpH.NewCartHandler(services.Cart),
		Checkout: httpH.NewCheckoutHandler(services.Checkout),
		Order:    httpH.NewOrderHandler(services.Orders),
		Admin:    httpH.NewAdminHandler(services.Catalog, services.Orders),
		Realtime: httpH.NewRealtimeHandler(clients.Hub),
		Account:  httpH.NewAccountHandler(services.Account),
	}
}
