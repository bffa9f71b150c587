package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/services"
)

type CartHandler struct {
	carts services.CartService
}

func NewCartHandler(carts services.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	v, err := h.carts.GetCart(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cart": v})
}

// POST /api/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, commerce.ValidationError("CartHandler.AddItem", "invalid request body"))
		return
	}
	if req.ProductID == uuid.Nil {
		response.RespondServiceError(c, commerce.ValidationError("CartHandler.AddItem", "product_id is required"))
		return
	}
	v, err := h.carts.AddItem(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cart": v})
}

// PATCH /api/cart/items/:productId
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	productID, err := uuidParam(c, "productId", "product")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		response.RespondServiceError(c, commerce.ValidationError("CartHandler.UpdateQuantity", "quantity is required"))
		return
	}
	v, err := h.carts.UpdateQuantity(c.Request.Context(), productID, *req.Quantity)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cart": v})
}

// DELETE /api/cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := uuidParam(c, "productId", "product")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	v, err := h.carts.RemoveItem(c.Request.Context(), productID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cart": v})
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.carts.ClearCart(c.Request.Context()); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
