package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier, err := identity.NewTokenVerifier(testSecret)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	am := NewAuthMiddleware(logger.Nop(), verifier)

	echo := func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user": rd.UserID.String(), "session": rd.CartSession, "admin": rd.IsAdmin()})
	}
	r := gin.New()
	r.Use(AttachRequestContext())
	r.GET("/optional", am.OptionalAuth(), echo)
	r.GET("/required", am.RequireAuth(), echo)
	r.GET("/admin", am.RequireAuth(), am.RequireAdmin(), echo)
	r.GET("/stream", am.RequireStreamAuth(), echo)
	return r
}

func sign(t *testing.T, role string) string {
	t.Helper()
	tok, err := identity.NewSigner(testSecret, time.Minute).Sign(identity.Principal{UserID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func do(r *gin.Engine, path, token, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if session != "" {
		req.Header.Set(HeaderCartSession, session)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter(t)
	user := sign(t, "")
	admin := sign(t, identity.RoleAdmin)

	cases := []struct {
		name    string
		path    string
		token   string
		session string
		status  int
	}{
		{"guest optional", "/optional", "", "cart-abc", http.StatusOK},
		{"bad token optional", "/optional", "garbage", "", http.StatusUnauthorized},
		{"user optional", "/optional", user, "", http.StatusOK},
		{"guest required", "/required", "", "cart-abc", http.StatusUnauthorized},
		{"user required", "/required", user, "", http.StatusOK},
		{"user admin", "/admin", user, "", http.StatusForbidden},
		{"admin admin", "/admin", admin, "", http.StatusOK},
		{"guest admin", "/admin", "", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := do(r, tc.path, tc.token, tc.session)
		if rec.Code != tc.status {
			t.Fatalf("%s: want=%d got=%d body=%s", tc.name, tc.status, rec.Code, rec.Body.String())
		}
	}
}

func TestAuthMiddleware_KeepsCartSession(t *testing.T) {
	r := newAuthRouter(t)
	rec := do(r, "/optional", sign(t, ""), "cart-xyz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"session":"cart-xyz"`) {
		t.Fatalf("session lost: %s", body)
	}
}

func TestQueryTokenOnlyOnStream(t *testing.T) {
	r := newAuthRouter(t)
	token := sign(t, "")

	if rec := do(r, "/required?token="+token, "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("required with query token: want=401 got=%d", rec.Code)
	}
	if rec := do(r, "/optional?token="+token, "", ""); !strings.Contains(rec.Body.String(), `"user":"`+uuid.Nil.String()+`"`) {
		t.Fatalf("optional must ignore query token: %s", rec.Body.String())
	}
	if rec := do(r, "/stream?token="+token, "", ""); rec.Code != http.StatusOK {
		t.Fatalf("stream with query token: want=200 got=%d", rec.Code)
	}
	if rec := do(r, "/stream", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("stream with bearer: want=200 got=%d", rec.Code)
	}
	if rec := do(r, "/stream?token=garbage", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("stream with bad token: want=401 got=%d", rec.Code)
	}
}
