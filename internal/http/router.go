package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/storefront-backend/internal/http/handlers"
	httpMW "github.com/yungbote/storefront-backend/internal/http/middleware"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
	ServiceName    string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	ProductHandler  *httpH.ProductHandler
	CartHandler     *httpH.CartHandler
	CheckoutHandler *httpH.CheckoutHandler
	OrderHandler    *httpH.OrderHandler
	AdminHandler    *httpH.AdminHandler
	RealtimeHandler *httpH.RealtimeHandler
	AccountHandler  *httpH.AccountHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")

	// Catalog (public)
	if cfg.ProductHandler != nil {
		api.GET("/products", cfg.ProductHandler.ListProducts)
		api.GET("/products/featured", cfg.ProductHandler.Featured)
		api.GET("/products/:id", cfg.ProductHandler.GetProduct)
		api.GET("/products/:id/related", cfg.ProductHandler.Related)
	}

	// Cart (guest or user)
	if cfg.CartHandler != nil {
		cart := api.Group("/cart")
		if cfg.AuthMiddleware != nil {
			cart.Use(cfg.AuthMiddleware.OptionalAuth())
		}
		cart.GET("", cfg.CartHandler.GetCart)
		cart.DELETE("", cfg.CartHandler.ClearCart)
		cart.POST("/items", cfg.CartHandler.AddItem)
		cart.PATCH("/items/:productId", cfg.CartHandler.UpdateQuantity)
		cart.DELETE("/items/:productId", cfg.CartHandler.RemoveItem)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Checkout
		if cfg.CheckoutHandler != nil {
			protected.POST("/checkout", cfg.CheckoutHandler.Checkout)
		}

		// Orders
		if cfg.OrderHandler != nil {
			protected.GET("/orders", cfg.OrderHandler.ListOrders)
			protected.GET("/orders/:id", cfg.OrderHandler.GetOrder)
		}

		// Account and address book
		if cfg.AccountHandler != nil {
			protected.GET("/account", cfg.AccountHandler.GetProfile)
			protected.GET("/account/addresses", cfg.AccountHandler.ListAddresses)
			protected.POST("/account/addresses", cfg.AccountHandler.AddAddress)
			protected.PUT("/account/addresses/:id", cfg.AccountHandler.UpdateAddress)
			protected.DELETE("/account/addresses/:id", cfg.AccountHandler.DeleteAddress)
		}
	}

	// Order updates (SSE)
	if cfg.RealtimeHandler != nil {
		if cfg.AuthMiddleware != nil {
			api.GET("/events", cfg.AuthMiddleware.RequireStreamAuth(), cfg.RealtimeHandler.Stream)
		} else {
			api.GET("/events", cfg.RealtimeHandler.Stream)
		}
	}

	admin := protected.Group("/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	if cfg.AdminHandler != nil {
		admin.POST("/products", cfg.AdminHandler.CreateProduct)
		admin.PATCH("/products/:id", cfg.AdminHandler.UpdateProduct)
		admin.DELETE("/products/:id", cfg.AdminHandler.DeactivateProduct)
		admin.PATCH("/orders/:id/status", cfg.AdminHandler.UpdateOrderStatus)
		admin.GET("/stats", cfg.AdminHandler.Stats)
	}

	return r
}
