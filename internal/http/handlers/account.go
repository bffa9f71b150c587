package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/services"
)

type AccountHandler struct {
	account services.AccountService
}

func NewAccountHandler(account services.AccountService) *AccountHandler {
	return &AccountHandler{account: account}
}

// GET /api/account
func (h *AccountHandler) GetProfile(c *gin.Context) {
	p, err := h.account.GetProfile(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// GET /api/account/addresses
func (h *AccountHandler) ListAddresses(c *gin.Context) {
	list, err := h.account.ListAddresses(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"addresses": list})
}

// POST /api/account/addresses
func (h *AccountHandler) AddAddress(c *gin.Context) {
	var in services.AddressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondServiceError(c, commerce.ValidationError("AccountHandler.AddAddress", "invalid request body"))
		return
	}
	a, err := h.account.AddAddress(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"address": a})
}

// PUT /api/account/addresses/:id
func (h *AccountHandler) UpdateAddress(c *gin.Context) {
	id, err := uuidParam(c, "id", "address")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var in services.AddressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondServiceError(c, commerce.ValidationError("AccountHandler.UpdateAddress", "invalid request body"))
		return
	}
	a, err := h.account.UpdateAddress(c.Request.Context(), id, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"address": a})
}

// DELETE /api/account/addresses/:id
func (h *AccountHandler) DeleteAddress(c *gin.Context) {
	id, err := uuidParam(c, "id", "address")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if err := h.account.DeleteAddress(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
