package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/app"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

func main() {
	var file string
	var dryRun bool
	var adminToken bool
	flag.StringVar(&file, "file", "", "YAML catalog to load instead of the built-in one")
	flag.BoolVar(&dryRun, "dry-run", false, "print the products without inserting")
	flag.BoolVar(&adminToken, "admin-token", false, "print a signed admin token for local use")
	flag.Parse()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	cfg := app.LoadConfig(log)

	raw := defaultCatalog
	if file != "" {
		raw, err = os.ReadFile(file)
		if err != nil {
			fmt.Printf("read catalog: %v\n", err)
			os.Exit(1)
		}
	}
	products, err := parseCatalog(raw)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	if dryRun {
		for _, p := range products {
			fmt.Printf("[dry-run] %s %s price=%s stock=%d\n", p.SKU, p.Name, p.Price.StringFixed(2), p.Stock)
		}
	} else {
		store, err := app.OpenDatabase(log, cfg)
		if err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := store.AutoMigrateAll(); err != nil {
			fmt.Printf("automigrate: %v\n", err)
			os.Exit(1)
		}
		catalog := services.NewCatalogService(log, repos.NewProductRepo(store.DB(), log))
		created, skipped, err := seedCatalog(context.Background(), catalog, products)
		if err != nil {
			fmt.Printf("seed failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("done; created=%d skipped=%d\n", created, skipped)
	}

	if adminToken {
		if cfg.JWTSecretKey == "" {
			fmt.Println("JWT_SECRET_KEY is required for -admin-token")
			os.Exit(1)
		}
		signer := identity.NewSigner(cfg.JWTSecretKey, cfg.AccessTokenTTL)
		tok, err := signer.Sign(identity.Principal{UserID: uuid.New(), Role: identity.RoleAdmin})
		if err != nil {
			fmt.Printf("sign admin token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(tok)
	}
}

// seedCatalog creates each product, skipping SKUs that already exist.
func seedCatalog(ctx context.Context, catalog services.CatalogService, products []services.ProductInput) (int, int, error) {
	created, skipped := 0, 0
	for _, p := range products {
		if _, err := catalog.CreateProduct(ctx, p); err != nil {
			if commerce.IsCode(err, commerce.CodeConflict) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("%s: %w", p.SKU, err)
		}
		created++
	}
	return created, skipped, nil
}
