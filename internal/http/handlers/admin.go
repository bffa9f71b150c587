package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/services"
)

// AdminHandler serves catalog management and order operations. Routes sit behind RequireAdmin.
type AdminHandler struct {
	catalog services.CatalogService
	orders  services.OrderService
}

func NewAdminHandler(catalog services.CatalogService, orders services.OrderService) *AdminHandler {
	return &AdminHandler{catalog: catalog, orders: orders}
}

type updateStatusRequest struct {
	Status commerce.OrderStatus `json:"status"`
	Notes  string               `json:"notes"`
}

// POST /api/admin/products
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var in services.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondServiceError(c, commerce.ValidationError("AdminHandler.CreateProduct", "invalid request body"))
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"product": p})
}

// PATCH /api/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, err := uuidParam(c, "id", "product")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var patch services.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondServiceError(c, commerce.ValidationError("AdminHandler.UpdateProduct", "invalid request body"))
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// DELETE /api/admin/products/:id
func (h *AdminHandler) DeactivateProduct(c *gin.Context) {
	id, err := uuidParam(c, "id", "product")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if err := h.catalog.DeactivateProduct(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PATCH /api/admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := uuidParam(c, "id", "order")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		response.RespondServiceError(c, commerce.ValidationError("AdminHandler.UpdateOrderStatus", "status is required"))
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status, req.Notes)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"order": o})
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.orders.AdminStats(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}
