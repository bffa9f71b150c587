package app

import (
	apphttp "github.com/yungbote/storefront-backend/internal/http"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		ServiceName:    cfg.ServiceName,

		AuthMiddleware: middleware.Auth,

		HealthHandler:   handlers.Health,
		ProductHandler:  handlers.Product,
		CartHandler:     handlers.Cart,
		CheckoutHandler: handlers.Checkout,
		OrderHandler:    handlers.Order,
		AdminHandler:    handlers.Admin,
		RealtimeHandler: handlers.Realtime,
		AccountHandler:  handlers.Account,
	})
}
