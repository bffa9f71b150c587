package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/realtime"
)

type RealtimeHandler struct {
	hub      *realtime.Hub
	identity identity.Resolver
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, identity: identity.NewRequestResolver()}
}

// GET /api/events
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID, err := h.identity.UserID(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	client := h.hub.NewClient(userID)
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	defer h.hub.CloseClient(client)
	h.hub.Serve(c.Writer, c.Request, client)
}
