package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type SortBy string

const (
	SortNewest    SortBy = "newest"
	SortPriceLow  SortBy = "price-low"
	SortPriceHigh SortBy = "price-high"
	SortNameAsc   SortBy = "name-asc"
	SortNameDesc  SortBy = "name-desc"
)

// ProductFilter narrows List. Zero values mean "no filter".
type ProductFilter struct {
	Query           string
	Category        commerce.ProductCategory
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	InStock         bool
	Featured        *bool
	Tags            []string
	ExcludeIDs      []uuid.UUID
	IncludeInactive bool
	SortBy          SortBy
	Offset          int
	Limit           int
}

type ProductCounts struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	SKUExists(dbc dbctx.Context, sku string, excludeID uuid.UUID) (bool, error)
	List(dbc dbctx.Context, f ProductFilter) ([]*types.Product, int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	DecrementStockIfAvailable(dbc dbctx.Context, id uuid.UUID, qty int) (bool, error)
	IncrementStock(dbc dbctx.Context, id uuid.UUID, qty int) error
	Counts(dbc dbctx.Context) (ProductCounts, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{
		db:  db,
		log: baseLog.With("repo", "ProductRepo"),
	}
}

func (r *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := dbc.Conn(r.db).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error) {
	var out []*types.Product
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns (nil, nil) when the product does not exist.
func (r *productRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var p types.Product
	err := dbc.Conn(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) SKUExists(dbc dbctx.Context, sku string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := dbc.Conn(r.db).
		Model(&types.Product{}).
		Where("sku = ?", commerce.NormalizeSKU(sku))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepo) List(dbc dbctx.Context, f ProductFilter) ([]*types.Product, int64, error) {
	q := r.applyFilter(dbc.Conn(r.db).Model(&types.Product{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []*types.Product
	q = applySort(q, f.SortBy)
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *productRepo) applyFilter(q *gorm.DB, f ProductFilter) *gorm.DB {
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Query)); s != "" {
		like := "%" + s + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?)", like, like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if len(f.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", f.ExcludeIDs)
	}
	for _, tag := range f.Tags {
		q = r.whereHasTag(q, tag)
	}
	return q
}

func (r *productRepo) whereHasTag(q *gorm.DB, tag string) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return q.Where("tags @> ?::jsonb", fmt.Sprintf("[%q]", tag))
	}
	return q.Where("EXISTS (SELECT 1 FROM json_each(products.tags) WHERE json_each.value = ?)", tag)
}

func applySort(q *gorm.DB, sortBy SortBy) *gorm.DB {
	switch sortBy {
	case SortPriceLow:
		return q.Order("price ASC").Order("created_at DESC")
	case SortPriceHigh:
		return q.Order("price DESC").Order("created_at DESC")
	case SortNameAsc:
		return q.Order("name ASC")
	case SortNameDesc:
		return q.Order("name DESC")
	default:
		return q.Order("created_at DESC").Order("id ASC")
	}
}

func (r *productRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := dbc.Conn(r.db).
		Model(&types.Product{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementStockIfAvailable subtracts qty only while enough stock remains on an active product.
// A false result means another checkout won the race or the product was deactivated.
func (r *productRepo) DecrementStockIfAvailable(dbc dbctx.Context, id uuid.UUID, qty int) (bool, error) {
	if id == uuid.Nil || qty <= 0 {
		return false, nil
	}
	res := dbc.Conn(r.db).
		Model(&types.Product{}).
		Where("id = ? AND stock >= ? AND is_active = ?", id, qty, true).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) IncrementStock(dbc dbctx.Context, id uuid.UUID, qty int) error {
	if id == uuid.Nil || qty <= 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *productRepo) Counts(dbc dbctx.Context) (ProductCounts, error) {
	var out ProductCounts
	conn := dbc.Conn(r.db)
	if err := conn.Model(&types.Product{}).Count(&out.Total).Error; err != nil {
		return out, err
	}
	if err := conn.Model(&types.Product{}).Where("is_active = ?", true).Count(&out.Active).Error; err != nil {
		return out, err
	}
	out.Inactive = out.Total - out.Active
	return out, nil
}
