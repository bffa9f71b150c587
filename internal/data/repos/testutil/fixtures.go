package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
)

type ProductOpt func(p *commerce.Product)

func WithStock(n int) ProductOpt { return func(p *commerce.Product) { p.Stock = n } }

func WithPrice(s string) ProductOpt {
	return func(p *commerce.Product) { p.Price = decimal.RequireFromString(s) }
}

func WithCategory(c commerce.ProductCategory) ProductOpt {
	return func(p *commerce.Product) { p.Category = c }
}

func WithName(name string) ProductOpt { return func(p *commerce.Product) { p.Name = name } }

func Inactive() ProductOpt { return func(p *commerce.Product) { p.IsActive = false } }

func Featured() ProductOpt { return func(p *commerce.Product) { p.Featured = true } }

func WithTags(tags ...string) ProductOpt { return func(p *commerce.Product) { p.Tags = tags } }

func CreatedAt(t time.Time) ProductOpt { return func(p *commerce.Product) { p.CreatedAt = t } }

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, opts ...ProductOpt) *commerce.Product {
	tb.Helper()
	id := uuid.New()
	p := &commerce.Product{
		ID:          id,
		Name:        "Product " + id.String()[:8],
		Description: "test product",
		Price:       decimal.NewFromInt(100),
		Images:      []string{"/img/" + id.String()[:8] + ".jpg"},
		Category:    commerce.CategoryHeadphones,
		Stock:       10,
		SKU:         "SKU-" + id.String()[:8],
		Brand:       "Audiophile",
		Tags:        []string{},
		IsActive:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Slug = commerce.Slugify(p.Name) + "-" + id.String()[:8]
	p.SKU = commerce.NormalizeSKU(p.SKU)
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

// SeedCart persists a cart holding the given product quantities in order.
func SeedCart(tb testing.TB, ctx context.Context, tx *gorm.DB, owner commerce.Owner, lines ...CartLine) *commerce.Cart {
	tb.Helper()
	now := time.Now().UTC()
	c := commerce.NewCart(owner, now)
	if err := tx.WithContext(ctx).Omit("Items").Create(c).Error; err != nil {
		tb.Fatalf("seed cart: %v", err)
	}
	for i, l := range lines {
		item := commerce.CartItem{
			CartID:    c.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Position:  i,
			AddedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
			tb.Fatalf("seed cart item: %v", err)
		}
		c.Items = append(c.Items, item)
	}
	return c
}

type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

func SeedOrder(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, status commerce.OrderStatus, total string, createdAt time.Time) *commerce.Order {
	tb.Helper()
	amount := decimal.RequireFromString(total)
	o := &commerce.Order{
		OrderNumber:   strings.ToUpper("ORD-TEST-" + uuid.NewString()[:6]),
		UserID:        userID,
		Subtotal:      amount,
		Shipping:      decimal.Zero,
		VAT:           decimal.Zero,
		Total:         amount,
		Status:        status,
		PaymentStatus: commerce.PaymentPaid,
		PaymentMethod: commerce.PaymentPayPal,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed order: %v", err)
	}
	return o
}
