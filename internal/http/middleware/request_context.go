package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
)

const HeaderCartSession = "X-Cart-Session"

const maxCartSessionLen = 128

// AttachRequestContext seeds RequestData with the anonymous cart session, if any.
// Auth middleware fills in the user later on the same value.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(HeaderCartSession))
		if len(session) > maxCartSessionLen {
			session = ""
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{CartSession: session})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
