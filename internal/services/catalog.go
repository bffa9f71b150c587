package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/yungbote/storefront-backend/internal/data/aggregates"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/data/repos/catalog"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

const (
	defaultFeaturedLimit = 3
	defaultRelatedLimit  = 4
	maxProductImages     = 10
	maxProductTags       = 10
)

type ProductQuery struct {
	Query    string
	Category commerce.ProductCategory
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   catalog.SortBy
	InStock  bool
	Featured *bool
	Tags     []string
	Page     int
	Limit    int
}

type ProductPage struct {
	Products   []*types.Product    `json:"products"`
	Pagination commerce.Pagination `json:"pagination"`
}

type ProductInput struct {
	Name           string                   `json:"name" validate:"required,max=200"`
	Description    string                   `json:"description" validate:"required,max=2000"`
	Price          decimal.Decimal          `json:"price"`
	Images         []string                 `json:"images" validate:"min=1,max=10,dive,required"`
	Category       commerce.ProductCategory `json:"category" validate:"required,category"`
	Subcategory    string                   `json:"subcategory" validate:"max=100"`
	Stock          int                      `json:"stock" validate:"min=0,max=99999"`
	SKU            string                   `json:"sku" validate:"required,sku"`
	Brand          string                   `json:"brand" validate:"max=100"`
	Specifications map[string]any           `json:"specifications"`
	Tags           []string                 `json:"tags" validate:"max=10,dive,product_tag"`
	Featured       bool                     `json:"featured"`
	IsActive       *bool                    `json:"is_active"`
}

// ProductPatch carries only the fields an admin wants to change.
type ProductPatch struct {
	Name           *string                   `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string                   `json:"description" validate:"omitempty,min=1,max=2000"`
	Price          *decimal.Decimal          `json:"price"`
	Images         *[]string                 `json:"images" validate:"omitempty,min=1,max=10,dive,required"`
	Category       *commerce.ProductCategory `json:"category" validate:"omitempty,category"`
	Subcategory    *string                   `json:"subcategory" validate:"omitempty,max=100"`
	Stock          *int                      `json:"stock" validate:"omitempty,min=0,max=99999"`
	SKU            *string                   `json:"sku" validate:"omitempty,sku"`
	Brand          *string                   `json:"brand" validate:"omitempty,max=100"`
	Specifications *map[string]any           `json:"specifications"`
	Tags           *[]string                 `json:"tags" validate:"omitempty,max=10,dive,product_tag"`
	Featured       *bool                     `json:"featured"`
	IsActive       *bool                     `json:"is_active"`
}

type CatalogService interface {
	ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error)
	FeaturedProducts(ctx context.Context, limit int) ([]*types.Product, error)
	RelatedProducts(ctx context.Context, id uuid.UUID, limit int) ([]*types.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*types.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*types.Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	log      *logger.Logger
	products repos.ProductRepo
}

func NewCatalogService(baseLog *logger.Logger, products repos.ProductRepo) CatalogService {
	return &catalogService{
		log:      baseLog.With("service", "CatalogService"),
		products: products,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	const op = "CatalogService.ListProducts"
	page, limit := commerce.NormalizePage(q.Page, q.Limit, commerce.DefaultProductPageSize)
	if q.Category != "" && !commerce.ValidCategory(q.Category) {
		return nil, commerce.ValidationError(op, "unknown category")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, commerce.ValidationError(op, "min_price must not exceed max_price")
	}
	switch q.SortBy {
	case "", catalog.SortNewest, catalog.SortPriceLow, catalog.SortPriceHigh, catalog.SortNameAsc, catalog.SortNameDesc:
	default:
		return nil, commerce.ValidationError(op, "unknown sort order")
	}

	list, total, err := s.products.List(dbctx.New(ctx), repos.ProductFilter{
		Query:    q.Query,
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		InStock:  q.InStock,
		Featured: q.Featured,
		Tags:     q.Tags,
		SortBy:   q.SortBy,
		Offset:   commerce.Offset(page, limit),
		Limit:    limit,
	})
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if list == nil {
		list = []*types.Product{}
	}
	return &ProductPage{Products: list, Pagination: commerce.NewPagination(page, limit, total)}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	const op = "CatalogService.GetProduct"
	p, err := s.products.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if p == nil {
		return nil, commerce.NotFoundError(op, "product")
	}
	return p, nil
}

func (s *catalogService) FeaturedProducts(ctx context.Context, limit int) ([]*types.Product, error) {
	const op = "CatalogService.FeaturedProducts"
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	if limit > commerce.MaxPageSize {
		limit = commerce.MaxPageSize
	}
	featured := true
	list, _, err := s.products.List(dbctx.New(ctx), repos.ProductFilter{
		Featured: &featured,
		InStock:  true,
		SortBy:   catalog.SortNewest,
		Limit:    limit,
	})
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if list == nil {
		list = []*types.Product{}
	}
	return list, nil
}

func (s *catalogService) RelatedProducts(ctx context.Context, id uuid.UUID, limit int) ([]*types.Product, error) {
	const op = "CatalogService.RelatedProducts"
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	if limit > commerce.MaxPageSize {
		limit = commerce.MaxPageSize
	}
	dbc := dbctx.New(ctx)
	p, err := s.products.GetByID(dbc, id)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if p == nil {
		return nil, commerce.NotFoundError(op, "product")
	}
	list, _, err := s.products.List(dbc, repos.ProductFilter{
		Category:   p.Category,
		InStock:    true,
		ExcludeIDs: []uuid.UUID{p.ID},
		SortBy:     catalog.SortNewest,
		Limit:      limit,
	})
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if list == nil {
		list = []*types.Product{}
	}
	return list, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*types.Product, error) {
	const op = "CatalogService.CreateProduct"
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = commerce.NormalizeSKU(in.SKU)
	if err := commerce.Validate(op, in); err != nil {
		return nil, err
	}
	if err := validatePrice(op, in.Price); err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	exists, err := s.products.SKUExists(dbc, in.SKU, uuid.Nil)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if exists {
		return nil, commerce.NewError(commerce.CodeConflict, op, "sku already exists: "+in.SKU, nil)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	p := &types.Product{
		Name:           in.Name,
		Slug:           commerce.Slugify(in.Name),
		Description:    strings.TrimSpace(in.Description),
		Price:          in.Price.Round(2),
		Images:         datatypes.JSONSlice[string](in.Images),
		Category:       in.Category,
		Subcategory:    strings.TrimSpace(in.Subcategory),
		Stock:          in.Stock,
		SKU:            in.SKU,
		Brand:          strings.TrimSpace(in.Brand),
		Specifications: datatypes.JSONMap(in.Specifications),
		Tags:           datatypes.JSONSlice[string](tags),
		IsActive:       active,
		Featured:       in.Featured,
	}
	if _, err := s.products.Create(dbc, []*types.Product{p}); err != nil {
		if aggregates.IsUniqueViolation(err) {
			return nil, commerce.NewError(commerce.CodeConflict, op, "product with this sku or name already exists", err)
		}
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	s.log.Info("product created", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*types.Product, error) {
	const op = "CatalogService.UpdateProduct"
	if patch.SKU != nil {
		sku := commerce.NormalizeSKU(*patch.SKU)
		patch.SKU = &sku
	}
	if err := commerce.Validate(op, patch); err != nil {
		return nil, err
	}
	if patch.Price != nil {
		if err := validatePrice(op, *patch.Price); err != nil {
			return nil, err
		}
	}

	dbc := dbctx.New(ctx)
	current, err := s.products.GetByID(dbc, id)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if current == nil {
		return nil, commerce.NotFoundError(op, "product")
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		updates["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		updates["price"] = patch.Price.Round(2)
	}
	if patch.Images != nil {
		updates["images"] = datatypes.JSONSlice[string](*patch.Images)
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Subcategory != nil {
		updates["subcategory"] = strings.TrimSpace(*patch.Subcategory)
	}
	if patch.Stock != nil {
		updates["stock"] = *patch.Stock
	}
	if patch.Brand != nil {
		updates["brand"] = strings.TrimSpace(*patch.Brand)
	}
	if patch.Specifications != nil {
		updates["specifications"] = datatypes.JSONMap(*patch.Specifications)
	}
	if patch.Tags != nil {
		updates["tags"] = datatypes.JSONSlice[string](*patch.Tags)
	}
	if patch.Featured != nil {
		updates["featured"] = *patch.Featured
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.SKU != nil && *patch.SKU != current.SKU {
		exists, err := s.products.SKUExists(dbc, *patch.SKU, id)
		if err != nil {
			return nil, commerce.Wrap(commerce.CodeInternal, op, err)
		}
		if exists {
			return nil, commerce.NewError(commerce.CodeConflict, op, "sku already exists: "+*patch.SKU, nil)
		}
		updates["sku"] = *patch.SKU
	}
	if len(updates) == 0 {
		return current, nil
	}

	if _, err := s.products.UpdateFields(dbc, id, updates); err != nil {
		if aggregates.IsUniqueViolation(err) {
			return nil, commerce.NewError(commerce.CodeConflict, op, "sku already exists", err)
		}
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	updated, err := s.products.GetByID(dbc, id)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if updated == nil {
		return nil, commerce.NotFoundError(op, "product")
	}
	return updated, nil
}

// DeactivateProduct hides the product from the storefront. Order history keeps its snapshot.
func (s *catalogService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	const op = "CatalogService.DeactivateProduct"
	ok, err := s.products.UpdateFields(dbctx.New(ctx), id, map[string]interface{}{"is_active": false})
	if err != nil {
		return commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if !ok {
		return commerce.NotFoundError(op, "product")
	}
	s.log.Info("product deactivated", "product_id", id)
	return nil
}

func validatePrice(op string, price decimal.Decimal) error {
	if price.IsNegative() || price.GreaterThan(commerce.MaxProductPrice) {
		return commerce.ValidationError(op, "price must be between 0 and 99999.99")
	}
	return nil
}
