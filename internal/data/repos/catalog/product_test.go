package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

func TestProductRepo_DecrementStockIfAvailable(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewProductRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	p := testutil.SeedProduct(t, ctx, db, testutil.WithStock(3))

	ok, err := repo.DecrementStockIfAvailable(dbc, p.ID, 2)
	if err != nil || !ok {
		t.Fatalf("first decrement: ok=%v err=%v", ok, err)
	}
	ok, err = repo.DecrementStockIfAvailable(dbc, p.ID, 2)
	if err != nil {
		t.Fatalf("second decrement: %v", err)
	}
	if ok {
		t.Fatalf("second decrement must fail with 1 unit left")
	}

	got, err := repo.GetByID(dbc, p.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got.Stock != 1 {
		t.Fatalf("stock: want=1 got=%d", got.Stock)
	}

	if err := repo.IncrementStock(dbc, p.ID, 4); err != nil {
		t.Fatalf("IncrementStock: %v", err)
	}
	got, _ = repo.GetByID(dbc, p.ID)
	if got.Stock != 5 {
		t.Fatalf("stock after restock: want=5 got=%d", got.Stock)
	}
}

func TestProductRepo_DecrementRefusesInactive(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewProductRepo(db, testutil.Logger(t))

	p := testutil.SeedProduct(t, ctx, db, testutil.WithStock(5), testutil.Inactive())
	ok, err := repo.DecrementStockIfAvailable(dbctx.Context{Ctx: ctx}, p.ID, 1)
	if err != nil || ok {
		t.Fatalf("decrement on inactive product: ok=%v err=%v", ok, err)
	}
}

func TestProductRepo_ConcurrentDecrementNeverOversells(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewProductRepo(db, testutil.Logger(t))
	p := testutil.SeedProduct(t, ctx, db, testutil.WithStock(5))

	const buyers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.DecrementStockIfAvailable(dbctx.Context{Ctx: ctx}, p.ID, 1)
			if err != nil {
				t.Errorf("decrement: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 5 {
		t.Fatalf("successful decrements: want=5 got=%d", wins)
	}
	got, _ := repo.GetByID(dbctx.Context{Ctx: ctx}, p.ID)
	if got.Stock != 0 {
		t.Fatalf("stock: want=0 got=%d", got.Stock)
	}
}

func TestProductRepo_ListFiltersAndPaging(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewProductRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cheap := testutil.SeedProduct(t, ctx, db, testutil.WithName("YX1 Earphones"), testutil.WithPrice("599"),
		testutil.WithCategory(commerce.CategoryEarphones), testutil.WithTags("wireless", "in-ear"), testutil.CreatedAt(base))
	mid := testutil.SeedProduct(t, ctx, db, testutil.WithName("XX59 Headphones"), testutil.WithPrice("899"),
		testutil.WithTags("wireless"), testutil.CreatedAt(base.Add(time.Hour)))
	pricey := testutil.SeedProduct(t, ctx, db, testutil.WithName("ZX9 Speaker"), testutil.WithPrice("4500"),
		testutil.WithCategory(commerce.CategorySpeakers), testutil.WithStock(0), testutil.Featured(), testutil.CreatedAt(base.Add(2*time.Hour)))
	testutil.SeedProduct(t, ctx, db, testutil.WithName("Retired Cable"), testutil.Inactive(), testutil.CreatedAt(base.Add(3*time.Hour)))

	all, total, err := repo.List(dbc, ProductFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("active products: want=3 got total=%d len=%d", total, len(all))
	}
	if all[0].ID != pricey.ID {
		t.Fatalf("newest first: want=%s got=%s", pricey.Name, all[0].Name)
	}

	byPrice, _, _ := repo.List(dbc, ProductFilter{SortBy: SortPriceLow})
	if byPrice[0].ID != cheap.ID || byPrice[2].ID != pricey.ID {
		t.Fatalf("price-low order: got %s, %s, %s", byPrice[0].Name, byPrice[1].Name, byPrice[2].Name)
	}

	minPrice := decimal.NewFromInt(800)
	ranged, total, _ := repo.List(dbc, ProductFilter{MinPrice: &minPrice, InStock: true})
	if total != 1 || ranged[0].ID != mid.ID {
		t.Fatalf("min price + in stock: want XX59 got total=%d", total)
	}

	searched, _, _ := repo.List(dbc, ProductFilter{Query: "speaker"})
	if len(searched) != 1 || searched[0].ID != pricey.ID {
		t.Fatalf("search: want ZX9 got %d results", len(searched))
	}

	tagged, total, _ := repo.List(dbc, ProductFilter{Tags: []string{"in-ear"}})
	if total != 1 || tagged[0].ID != cheap.ID {
		t.Fatalf("tag filter: want YX1 got total=%d", total)
	}

	page2, total, _ := repo.List(dbc, ProductFilter{SortBy: SortNameAsc, Offset: 2, Limit: 2})
	if total != 3 || len(page2) != 1 || page2[0].ID != pricey.ID {
		t.Fatalf("paging: total=%d len=%d", total, len(page2))
	}

	counts, err := repo.Counts(dbc)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Total != 4 || counts.Active != 3 || counts.Inactive != 1 {
		t.Fatalf("counts: got %+v", counts)
	}
}

func TestProductRepo_SKUExistsAndUpdate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewProductRepo(db, testutil.Logger(t))
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	p := testutil.SeedProduct(t, ctx, tx)
	exists, err := repo.SKUExists(dbc, p.SKU, uuid.Nil)
	if err != nil || !exists {
		t.Fatalf("SKUExists: exists=%v err=%v", exists, err)
	}
	exists, _ = repo.SKUExists(dbc, p.SKU, p.ID)
	if exists {
		t.Fatalf("SKUExists must ignore the excluded product")
	}

	ok, err := repo.UpdateFields(dbc, p.ID, map[string]interface{}{"is_active": false})
	if err != nil || !ok {
		t.Fatalf("UpdateFields: ok=%v err=%v", ok, err)
	}
	got, _ := repo.GetByID(dbc, p.ID)
	if got.IsActive {
		t.Fatalf("product still active")
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", missing, err)
	}
}
