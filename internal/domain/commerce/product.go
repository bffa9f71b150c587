package commerce

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryHeadphones  ProductCategory = "headphones"
	CategorySpeakers    ProductCategory = "speakers"
	CategoryEarphones   ProductCategory = "earphones"
	CategoryAccessories ProductCategory = "accessories"
)

var ProductCategories = []ProductCategory{
	CategoryHeadphones,
	CategorySpeakers,
	CategoryEarphones,
	CategoryAccessories,
}

var ProductTags = []string{
	"premium", "wireless", "wired", "bluetooth", "noise-cancelling",
	"over-ear", "on-ear", "in-ear", "portable", "bookshelf",
	"featured", "bestseller", "new", "limited-edition",
}

var MaxProductPrice = decimal.RequireFromString("99999.99")

const MaxProductStock = 99999

type Product struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string                      `gorm:"column:name;size:200;not null;index" json:"name"`
	Slug           string                      `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description    string                      `gorm:"column:description;type:text;not null" json:"description"`
	Price          decimal.Decimal             `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Images         datatypes.JSONSlice[string] `gorm:"column:images" json:"images"`
	Category       ProductCategory             `gorm:"column:category;size:32;not null;index" json:"category"`
	Subcategory    string                      `gorm:"column:subcategory;size:100" json:"subcategory,omitempty"`
	Stock          int                         `gorm:"column:stock;not null" json:"stock"`
	SKU            string                      `gorm:"column:sku;size:20;not null;uniqueIndex" json:"sku"`
	Brand          string                      `gorm:"column:brand;size:100" json:"brand,omitempty"`
	Specifications datatypes.JSONMap           `gorm:"column:specifications" json:"specifications,omitempty"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	IsActive       bool                        `gorm:"column:is_active;not null;index" json:"is_active"`
	Featured       bool                        `gorm:"column:featured;not null;index" json:"featured"`
	CreatedAt      time.Time                   `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	p.SKU = NormalizeSKU(p.SKU)
	return nil
}

// PrimaryImage is the image snapshotted onto order lines.
func (p *Product) PrimaryImage() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Purchasable reports whether checkout may sell qty units right now.
func (p *Product) Purchasable(qty int) bool {
	return p != nil && p.IsActive && p.Stock >= qty
}

var (
	skuPattern      = regexp.MustCompile(`^[A-Z0-9-]+$`)
	slugStripper    = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashTrimmer = regexp.MustCompile(`-{2,}`)
)

func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func ValidSKU(sku string) bool {
	sku = NormalizeSKU(sku)
	return len(sku) >= 3 && len(sku) <= 20 && skuPattern.MatchString(sku)
}

func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStripper.ReplaceAllString(s, "-")
	s = slugDashTrimmer.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func ValidCategory(c ProductCategory) bool {
	for _, known := range ProductCategories {
		if c == known {
			return true
		}
	}
	return false
}
