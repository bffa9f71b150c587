package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/services"
)

type CheckoutHandler struct {
	checkout services.CheckoutService
}

func NewCheckoutHandler(checkout services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// POST /api/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var in services.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondServiceError(c, commerce.ValidationError("CheckoutHandler.Checkout", "invalid request body"))
		return
	}
	res, err := h.checkout.Checkout(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, res)
}
