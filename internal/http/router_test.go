package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/aggregates"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	repotest "github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/storefront-backend/internal/http/handlers"
	httpMW "github.com/yungbote/storefront-backend/internal/http/middleware"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/services"
)

const testSecret = "router-test-secret"

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	signer *identity.Signer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := repotest.DB(t)
	log := repotest.Logger(t)

	products := repos.NewProductRepo(db, log)
	carts := repos.NewCartRepo(db, log)
	orders := repos.NewOrderRepo(db, log)
	base := aggregates.BaseDeps{DB: db, Log: log}
	checkoutAgg := aggregates.NewCheckoutAggregate(aggregates.CheckoutAggregateDeps{Base: base, Carts: carts, Products: products, Orders: orders})
	statusAgg := aggregates.NewOrderStatusAggregate(aggregates.OrderStatusAggregateDeps{Base: base, Orders: orders, Products: products})

	cartSvc := services.NewCartService(log, carts, products, nil, nil, nil)
	accountSvc := services.NewAccountService(log, repos.NewAddressRepo(db, log), orders, nil)
	checkoutSvc := services.NewCheckoutService(log, checkoutAgg, nil, nil, nil, nil, accountSvc, nil)
	orderSvc := services.NewOrderService(log, orders, products, statusAgg, nil, nil, nil)
	catalogSvc := services.NewCatalogService(log, products)

	verifier, err := identity.NewTokenVerifier(testSecret)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	engine := NewRouter(RouterConfig{
		Log:             log,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, verifier),
		HealthHandler:   httpH.NewHealthHandler(db),
		ProductHandler:  httpH.NewProductHandler(catalogSvc),
		CartHandler:     httpH.NewCartHandler(cartSvc),
		CheckoutHandler: httpH.NewCheckoutHandler(checkoutSvc),
		OrderHandler:    httpH.NewOrderHandler(orderSvc),
		AdminHandler:    httpH.NewAdminHandler(catalogSvc, orderSvc),
		AccountHandler:  httpH.NewAccountHandler(accountSvc),
	})
	return &testServer{engine: engine, db: db, signer: identity.NewSigner(testSecret, time.Minute)}
}

func (s *testServer) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := s.signer.Sign(identity.Principal{UserID: userID, Role: role})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

type call struct {
	method  string
	path    string
	token   string
	session string
	body    any
}

func (s *testServer) do(t *testing.T, c call) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		if err := json.NewEncoder(&buf).Encode(c.body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.session != "" {
		req.Header.Set(httpMW.HeaderCartSession, c.session)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func errorCode(body map[string]any) string {
	env, _ := body["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func checkoutBody() map[string]any {
	return map[string]any{
		"shipping_address": map[string]any{
			"first_name": "Alexei",
			"last_name":  "Ward",
			"address1":   "1137 Williams Avenue",
			"city":       "New York",
			"state":      "NY",
			"zip_code":   "10001",
			"country":    "United States",
		},
		"same_as_shipping": true,
		"payment_method":   "paypal",
	}
}

func TestRouter_CheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	a := repotest.SeedProduct(t, ctx, s.db, repotest.WithPrice("100"), repotest.WithStock(5))
	b := repotest.SeedProduct(t, ctx, s.db, repotest.WithPrice("50"), repotest.WithStock(3))
	userID := uuid.New()
	tok := s.token(t, userID, "")

	rec, body := s.do(t, call{method: http.MethodPost, path: "/api/checkout", token: tok, body: checkoutBody()})
	if rec.Code != http.StatusBadRequest || errorCode(body) != "empty_cart" {
		t.Fatalf("empty cart: status=%d body=%v", rec.Code, body)
	}

	for _, line := range []struct {
		id  uuid.UUID
		qty int
	}{{a.ID, 2}, {b.ID, 1}} {
		rec, body = s.do(t, call{method: http.MethodPost, path: "/api/cart/items", token: tok,
			body: map[string]any{"product_id": line.id, "quantity": line.qty}})
		if rec.Code != http.StatusOK {
			t.Fatalf("add item: status=%d body=%v", rec.Code, body)
		}
	}

	rec, body = s.do(t, call{method: http.MethodPost, path: "/api/checkout", token: tok, body: checkoutBody()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: status=%d body=%v", rec.Code, body)
	}
	totals, _ := body["totals"].(map[string]any)
	if totals["total"] != "350" || totals["vat"] != "50" {
		t.Fatalf("totals: got=%v", totals)
	}
	orderID, _ := body["order_id"].(string)

	rec, body = s.do(t, call{method: http.MethodGet, path: "/api/orders/" + orderID, token: tok})
	if rec.Code != http.StatusOK {
		t.Fatalf("get order: status=%d body=%v", rec.Code, body)
	}
	rec, body = s.do(t, call{method: http.MethodGet, path: "/api/orders/" + orderID, token: s.token(t, uuid.New(), "")})
	if rec.Code != http.StatusNotFound || errorCode(body) != "not_found" {
		t.Fatalf("foreign order: status=%d body=%v", rec.Code, body)
	}

	rec, body = s.do(t, call{method: http.MethodGet, path: "/api/orders?page=1&limit=5", token: tok})
	pagination, _ := body["pagination"].(map[string]any)
	if rec.Code != http.StatusOK || pagination["total_count"] != float64(1) {
		t.Fatalf("list orders: status=%d body=%v", rec.Code, body)
	}
}

func TestRouter_AuthAndErrors(t *testing.T) {
	s := newTestServer(t)
	p := repotest.SeedProduct(t, context.Background(), s.db, repotest.WithStock(1))

	rec, _ := s.do(t, call{method: http.MethodGet, path: "/healthcheck"})
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status=%d", rec.Code)
	}

	rec, body := s.do(t, call{method: http.MethodGet, path: "/api/cart"})
	if rec.Code != http.StatusUnauthorized || errorCode(body) != "authentication_required" {
		t.Fatalf("anonymous cart: status=%d body=%v", rec.Code, body)
	}
	rec, body = s.do(t, call{method: http.MethodPost, path: "/api/cart/items", session: "guest-1",
		body: map[string]any{"product_id": p.ID, "quantity": 0}})
	if rec.Code != http.StatusOK {
		t.Fatalf("guest add: status=%d body=%v", rec.Code, body)
	}
	rec, body = s.do(t, call{method: http.MethodPatch, path: "/api/cart/items/" + p.ID.String(), session: "guest-1",
		body: map[string]any{"quantity": 100}})
	if rec.Code != http.StatusBadRequest || errorCode(body) != "validation" {
		t.Fatalf("over 99: status=%d body=%v", rec.Code, body)
	}

	rec, body = s.do(t, call{method: http.MethodPost, path: "/api/checkout", session: "guest-1", body: checkoutBody()})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("guest checkout: status=%d body=%v", rec.Code, body)
	}

	rec, _ = s.do(t, call{method: http.MethodGet, path: "/api/admin/stats", token: s.token(t, uuid.New(), "")})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user stats: status=%d", rec.Code)
	}
	rec, body = s.do(t, call{method: http.MethodGet, path: "/api/admin/stats", token: s.token(t, uuid.New(), identity.RoleAdmin)})
	if rec.Code != http.StatusOK || body["total_products"] != float64(1) {
		t.Fatalf("admin stats: status=%d body=%v", rec.Code, body)
	}

	rec, body = s.do(t, call{method: http.MethodGet, path: "/api/products/not-a-uuid"})
	if rec.Code != http.StatusBadRequest || errorCode(body) != "validation" {
		t.Fatalf("bad id: status=%d body=%v", rec.Code, body)
	}
	rec, body = s.do(t, call{method: http.MethodGet, path: "/api/products/featured"})
	if rec.Code != http.StatusOK {
		t.Fatalf("featured: status=%d body=%v", rec.Code, body)
	}
}

func TestRouter_InsufficientStockIsConflict(t *testing.T) {
	s := newTestServer(t)
	p := repotest.SeedProduct(t, context.Background(), s.db, repotest.WithStock(1))
	tok := s.token(t, uuid.New(), "")

	rec, body := s.do(t, call{method: http.MethodPost, path: "/api/cart/items", token: tok,
		body: map[string]any{"product_id": p.ID, "quantity": 2}})
	if rec.Code != http.StatusOK {
		t.Fatalf("add: status=%d body=%v", rec.Code, body)
	}
	rec, body = s.do(t, call{method: http.MethodPost, path: "/api/checkout", token: tok, body: checkoutBody()})
	if rec.Code != http.StatusConflict || errorCode(body) != "insufficient_stock" {
		t.Fatalf("checkout: status=%d body=%v", rec.Code, body)
	}
}

func TestRouter_AddressBookFeedsCheckout(t *testing.T) {
	s := newTestServer(t)
	p := repotest.SeedProduct(t, context.Background(), s.db, repotest.WithPrice("100"), repotest.WithStock(5))
	tok := s.token(t, uuid.New(), "")

	rec, _ := s.do(t, call{method: http.MethodGet, path: "/api/account"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous profile: status=%d", rec.Code)
	}

	shipping, _ := checkoutBody()["shipping_address"].(map[string]any)
	entry := map[string]any{"type": "shipping", "is_default": true}
	for k, v := range shipping {
		entry[k] = v
	}
	rec, body := s.do(t, call{method: http.MethodPost, path: "/api/account/addresses", token: tok, body: entry})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add address: status=%d body=%v", rec.Code, body)
	}
	saved, _ := body["address"].(map[string]any)
	addressID, _ := saved["id"].(string)
	if saved["is_default"] != true || addressID == "" {
		t.Fatalf("saved address: %v", saved)
	}

	rec, body = s.do(t, call{method: http.MethodPost, path: "/api/account/addresses", token: tok,
		body: map[string]any{"type": "shipping", "first_name": "Alexei"}})
	if rec.Code != http.StatusBadRequest || errorCode(body) != "validation" {
		t.Fatalf("incomplete address: status=%d body=%v", rec.Code, body)
	}
	rec, body = s.do(t, call{method: http.MethodDelete, path: "/api/account/addresses/" + addressID, token: s.token(t, uuid.New(), "")})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: status=%d body=%v", rec.Code, body)
	}

	rec, body = s.do(t, call{method: http.MethodPost, path: "/api/cart/items", token: tok,
		body: map[string]any{"product_id": p.ID, "quantity": 1}})
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: status=%d body=%v", rec.Code, body)
	}
	rec, body = s.do(t, call{method: http.MethodPost, path: "/api/checkout", token: tok, body: map[string]any{
		"shipping_address_id": addressID,
		"same_as_shipping":    true,
		"payment_method":      "paypal",
	}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout with saved address: status=%d body=%v", rec.Code, body)
	}

	rec, body = s.do(t, call{method: http.MethodGet, path: "/api/account", token: tok})
	profile, _ := body["profile"].(map[string]any)
	addresses, _ := profile["addresses"].([]any)
	if rec.Code != http.StatusOK || profile["order_count"] != float64(1) || len(addresses) != 1 {
		t.Fatalf("profile: status=%d body=%v", rec.Code, body)
	}
}
