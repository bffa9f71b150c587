package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/services"
)

type OrderHandler struct {
	orders services.OrderService
}

func NewOrderHandler(orders services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, err := h.orders.ListOrdersForUser(c.Request.Context(), intQuery(c, "page"), intQuery(c, "limit"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := uuidParam(c, "id", "order")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	o, err := h.orders.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"order": o})
}
