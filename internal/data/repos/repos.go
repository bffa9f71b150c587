package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos/accounts"
	"github.com/yungbote/storefront-backend/internal/data/repos/carts"
	"github.com/yungbote/storefront-backend/internal/data/repos/catalog"
	"github.com/yungbote/storefront-backend/internal/data/repos/orders"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type ProductRepo = catalog.ProductRepo
type ProductFilter = catalog.ProductFilter
type ProductCounts = catalog.ProductCounts

type CartRepo = carts.CartRepo

type OrderRepo = orders.OrderRepo
type OrderStats = orders.OrderStats

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	return carts.NewCartRepo(db, baseLog)
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return orders.NewOrderRepo(db, baseLog)
}

type AddressRepo = accounts.AddressRepo

func NewAddressRepo(db *gorm.DB, baseLog *logger.Logger) AddressRepo {
	return accounts.NewAddressRepo(db, baseLog)
}
