package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Repos struct {
	Products  repos.ProductRepo
	Carts     repos.CartRepo
	Orders    repos.OrderRepo
	Addresses repos.AddressRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Products:  repos.NewProductRepo(db, log),
		Carts:     repos.NewCartRepo(db, log),
		Orders:    repos.NewOrderRepo(db, log),
		Addresses: repos.NewAddressRepo(db, log),
	}
}
