package main

import (
	"context"
	"testing"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	"github.com/yungbote/storefront-backend/internal/services"
)

func TestParseDefaultCatalog(t *testing.T) {
	products, err := parseCatalog(defaultCatalog)
	if err != nil {
		t.Fatalf("parseCatalog: %v", err)
	}
	if len(products) != 6 {
		t.Fatalf("products: want=6 got=%d", len(products))
	}
	first := products[0]
	if first.SKU != "XX99-MK2" {
		t.Fatalf("sku: want=XX99-MK2 got=%s", first.SKU)
	}
	if first.Price.StringFixed(2) != "2999.00" {
		t.Fatalf("price: want=2999.00 got=%s", first.Price.StringFixed(2))
	}
	if first.Stock != 15 || !first.Featured {
		t.Fatalf("stock/featured: got stock=%d featured=%v", first.Stock, first.Featured)
	}
	if len(first.Images) != 4 {
		t.Fatalf("images: want=4 got=%d", len(first.Images))
	}
}

func TestParseCatalogRejectsBadPrice(t *testing.T) {
	raw := []byte("products:\n  - name: Broken\n    price: abc\n    sku: BRK-1\n")
	if _, err := parseCatalog(raw); err == nil {
		t.Fatalf("expected price error")
	}
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	catalog := services.NewCatalogService(log, repos.NewProductRepo(db, log))
	products, err := parseCatalog(defaultCatalog)
	if err != nil {
		t.Fatalf("parseCatalog: %v", err)
	}

	ctx := context.Background()
	created, skipped, err := seedCatalog(ctx, catalog, products)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if created != 6 || skipped != 0 {
		t.Fatalf("first seed: want created=6 skipped=0 got created=%d skipped=%d", created, skipped)
	}

	created, skipped, err = seedCatalog(ctx, catalog, products)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if created != 0 || skipped != 6 {
		t.Fatalf("second seed: want created=0 skipped=6 got created=%d skipped=%d", created, skipped)
	}
}
