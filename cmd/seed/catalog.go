package main

import (
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/services"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Products []catalogProduct `yaml:"products"`
}

type catalogProduct struct {
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description"`
	Price          string         `yaml:"price"`
	Images         []string       `yaml:"images"`
	Category       string         `yaml:"category"`
	Subcategory    string         `yaml:"subcategory"`
	Stock          int            `yaml:"stock"`
	SKU            string         `yaml:"sku"`
	Brand          string         `yaml:"brand"`
	Specifications map[string]any `yaml:"specifications"`
	Tags           []string       `yaml:"tags"`
	Featured       bool           `yaml:"featured"`
}

// parseCatalog decodes a YAML catalog into product inputs. Prices are strings
// so they reach decimal without a float round trip.
func parseCatalog(raw []byte) ([]services.ProductInput, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]services.ProductInput, 0, len(file.Products))
	for i, p := range file.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): price %q: %w", i, p.SKU, p.Price, err)
		}
		out = append(out, services.ProductInput{
			Name:           p.Name,
			Description:    p.Description,
			Price:          price,
			Images:         p.Images,
			Category:       commerce.ProductCategory(p.Category),
			Subcategory:    p.Subcategory,
			Stock:          p.Stock,
			SKU:            p.SKU,
			Brand:          p.Brand,
			Specifications: p.Specifications,
			Tags:           p.Tags,
			Featured:       p.Featured,
		})
	}
	return out, nil
}
