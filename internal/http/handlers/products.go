package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/data/repos/catalog"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/services"
)

type ProductHandler struct {
	catalog services.CatalogService
}

func NewProductHandler(catalog services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	minPrice, err := decimalQuery(c, "min_price")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	maxPrice, err := decimalQuery(c, "max_price")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	inStock := boolQuery(c, "in_stock")
	page, err := h.catalog.ListProducts(c.Request.Context(), services.ProductQuery{
		Query:    c.Query("q"),
		Category: commerce.ProductCategory(c.Query("category")),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		SortBy:   catalog.SortBy(c.Query("sort")),
		InStock:  inStock != nil && *inStock,
		Featured: boolQuery(c, "featured"),
		Tags:     listQuery(c, "tags"),
		Page:     intQuery(c, "page"),
		Limit:    intQuery(c, "limit"),
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/products/featured
func (h *ProductHandler) Featured(c *gin.Context) {
	list, err := h.catalog.FeaturedProducts(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": list})
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuidParam(c, "id", "product")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// GET /api/products/:id/related
func (h *ProductHandler) Related(c *gin.Context) {
	id, err := uuidParam(c, "id", "product")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	list, err := h.catalog.RelatedProducts(c.Request.Context(), id, intQuery(c, "limit"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": list})
}
