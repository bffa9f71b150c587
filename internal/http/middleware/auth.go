package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type AuthMiddleware struct {
	log      *logger.Logger
	verifier *identity.TokenVerifier
}

func NewAuthMiddleware(log *logger.Logger, verifier *identity.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), verifier: verifier}
}

// OptionalAuth attaches the user when a valid token is present and lets guests through.
// A token that is present but invalid is still rejected.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		if err := am.attach(c, tokenString); err != nil {
			response.RespondError(c, http.StatusUnauthorized, "authentication_required", err)
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return am.require(bearerToken)
}

// RequireStreamAuth is RequireAuth for the SSE stream. It also reads ?token=, the only
// credential an EventSource can send.
func (am *AuthMiddleware) RequireStreamAuth() gin.HandlerFunc {
	return am.require(streamToken)
}

func (am *AuthMiddleware) require(extract func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extract(c)
		if tokenString == "" {
			response.RespondError(c, http.StatusUnauthorized, "authentication_required", errors.New("missing or invalid token"))
			return
		}
		if err := am.attach(c, tokenString); err != nil {
			response.RespondError(c, http.StatusUnauthorized, "authentication_required", err)
			return
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == uuid.Nil {
			response.RespondError(c, http.StatusUnauthorized, "authentication_required", errors.New("authentication required"))
			return
		}
		if !rd.IsAdmin() {
			response.RespondError(c, http.StatusForbidden, "forbidden", errors.New("admin access required"))
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) attach(c *gin.Context, tokenString string) error {
	if am.verifier == nil {
		return identity.ErrInvalidToken
	}
	p, err := am.verifier.Verify(tokenString)
	if err != nil {
		am.log.Debug("token rejected", "error", err)
		return identity.ErrInvalidToken
	}
	ctx := c.Request.Context()
	rd := ctxutil.GetRequestData(ctx)
	next := &ctxutil.RequestData{}
	if rd != nil {
		*next = *rd
	}
	next.TokenString = tokenString
	next.UserID = p.UserID
	next.Role = p.Role
	c.Request = c.Request.WithContext(ctxutil.WithRequestData(ctx, next))
	return nil
}

func streamToken(c *gin.Context) string {
	if qToken := strings.TrimSpace(c.Query("token")); qToken != "" {
		return qToken
	}
	return bearerToken(c)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
