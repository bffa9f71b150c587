package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/domain/pricing"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/cache"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// CartLineView is a cart line joined with the product as it is right now.
type CartLineView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

type CartView struct {
	Items          []CartLineView `json:"items"`
	TotalItemCount int            `json:"total_item_count"`
	Totals         pricing.Totals `json:"totals"`
}

type CartService interface {
	AddItem(ctx context.Context, productID uuid.UUID, quantity int) (*CartView, error)
	UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, productID uuid.UUID) (*CartView, error)
	ClearCart(ctx context.Context) error
	GetCart(ctx context.Context) (*CartView, error)
	GetTotals(ctx context.Context) (pricing.Totals, error)
}

type cartService struct {
	log      *logger.Logger
	carts    repos.CartRepo
	products repos.ProductRepo
	cache    cache.CartCache
	identity identity.Resolver
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewCartService(
	baseLog *logger.Logger,
	carts repos.CartRepo,
	products repos.ProductRepo,
	cartCache cache.CartCache,
	resolver identity.Resolver,
	metrics *observability.Metrics,
) CartService {
	if cartCache == nil {
		cartCache = cache.Noop()
	}
	if resolver == nil {
		resolver = identity.NewRequestResolver()
	}
	return &cartService{
		log:      baseLog.With("service", "CartService"),
		carts:    carts,
		products: products,
		cache:    cartCache,
		identity: resolver,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *cartService) AddItem(ctx context.Context, productID uuid.UUID, quantity int) (*CartView, error) {
	const op = "CartService.AddItem"
	if quantity == 0 {
		quantity = 1
	}
	if quantity < commerce.MinLineQuantity || quantity > commerce.MaxLineQuantity {
		return nil, commerce.ValidationError(op, "quantity must be between 1 and 99")
	}
	owner, err := s.identity.Owner(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	p, err := s.products.GetByID(dbc, productID)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if p == nil {
		return nil, commerce.NotFoundError(op, "product")
	}

	now := s.now()
	cart, err := s.loadForWrite(dbc, owner, now)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if err := cart.AddItem(productID, quantity, now); err != nil {
		return nil, err
	}
	return s.persist(dbc, op, cart)
}

func (s *cartService) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int) (*CartView, error) {
	const op = "CartService.UpdateQuantity"
	owner, err := s.identity.Owner(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	now := s.now()
	cart, err := s.loadForWrite(dbc, owner, now)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if cart.ID == uuid.Nil {
		if quantity > commerce.MaxLineQuantity {
			return nil, commerce.ValidationError(op, "quantity cannot exceed 99 per product")
		}
		return s.view(dbc, op, cart)
	}
	if err := cart.UpdateQuantity(productID, quantity, now); err != nil {
		return nil, err
	}
	return s.persist(dbc, op, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, productID uuid.UUID) (*CartView, error) {
	const op = "CartService.RemoveItem"
	owner, err := s.identity.Owner(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	now := s.now()
	cart, err := s.loadForWrite(dbc, owner, now)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if !cart.RemoveItem(productID, now) {
		return s.view(dbc, op, cart)
	}
	return s.persist(dbc, op, cart)
}

func (s *cartService) ClearCart(ctx context.Context) error {
	const op = "CartService.ClearCart"
	owner, err := s.identity.Owner(ctx)
	if err != nil {
		return err
	}
	if _, err := s.carts.DeleteByOwnerKey(dbctx.New(ctx), owner.Key()); err != nil {
		return commerce.Wrap(commerce.CodeInternal, op, err)
	}
	s.invalidate(ctx, owner.Key())
	return nil
}

func (s *cartService) GetCart(ctx context.Context) (*CartView, error) {
	const op = "CartService.GetCart"
	owner, err := s.identity.Owner(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	cart, err := s.loadForRead(dbc, owner)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	return s.view(dbc, op, cart)
}

func (s *cartService) GetTotals(ctx context.Context) (pricing.Totals, error) {
	v, err := s.GetCart(ctx)
	if err != nil {
		return pricing.Totals{}, err
	}
	return v.Totals, nil
}

// loadForRead serves from the cache when possible and fills it on a miss.
func (s *cartService) loadForRead(dbc dbctx.Context, owner commerce.Owner) (*types.Cart, error) {
	key := owner.Key()
	now := s.now()
	cached, err := s.cache.Get(dbc.Ctx, key)
	switch {
	case err == nil && !cached.Expired(now):
		s.metrics.IncCartCache("hit")
		return cached, nil
	case err == nil, errors.Is(err, cache.ErrCacheMiss):
		s.metrics.IncCartCache("miss")
	default:
		s.metrics.IncCartCache("error")
		s.log.Warn("cart cache read failed", "owner_key", key, "error", err)
	}

	cart, err := s.carts.GetByOwnerKey(dbc, key)
	if err != nil {
		return nil, err
	}
	if cart == nil || cart.Expired(now) {
		return commerce.NewCart(owner, now), nil
	}
	if err := s.cache.Set(dbc.Ctx, cart); err != nil {
		s.log.Warn("cart cache fill failed", "owner_key", key, "error", err)
	}
	return cart, nil
}

// loadForWrite always reads the store; an expired cart is dropped and restarted.
func (s *cartService) loadForWrite(dbc dbctx.Context, owner commerce.Owner, now time.Time) (*types.Cart, error) {
	cart, err := s.carts.GetByOwnerKey(dbc, owner.Key())
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return commerce.NewCart(owner, now), nil
	}
	if cart.Expired(now) {
		if _, err := s.carts.DeleteByOwnerKey(dbc, owner.Key()); err != nil {
			return nil, err
		}
		return commerce.NewCart(owner, now), nil
	}
	return cart, nil
}

func (s *cartService) persist(dbc dbctx.Context, op string, cart *types.Cart) (*CartView, error) {
	if err := s.carts.Save(dbc, cart); err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	s.invalidate(dbc.Ctx, cart.OwnerKey)
	return s.view(dbc, op, cart)
}

func (s *cartService) invalidate(ctx context.Context, ownerKey string) {
	if err := s.cache.Delete(ctx, ownerKey); err != nil {
		s.log.Warn("cart cache invalidation failed", "owner_key", ownerKey, "error", err)
	}
}

func (s *cartService) view(dbc dbctx.Context, op string, cart *types.Cart) (*CartView, error) {
	out := &CartView{Items: []CartLineView{}}
	if cart.IsEmpty() {
		out.Totals = pricing.ComputeTotals(decimal.Zero)
		return out, nil
	}
	products, err := s.products.GetByIDs(dbc, cart.ProductIDs())
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	byID := make(map[uuid.UUID]*types.Product, len(products))
	prices := make(map[uuid.UUID]decimal.Decimal, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		byID[p.ID] = p
		prices[p.ID] = p.Price
	}
	for _, it := range cart.Items {
		line := CartLineView{ProductID: it.ProductID, Quantity: it.Quantity}
		if p := byID[it.ProductID]; p != nil {
			line.Name = p.Name
			line.Slug = p.Slug
			line.Image = p.PrimaryImage()
			line.Price = p.Price
			line.LineTotal = pricing.LineTotal(p.Price, it.Quantity)
			line.Stock = p.Stock
			line.Available = p.Purchasable(it.Quantity)
		}
		out.Items = append(out.Items, line)
	}
	out.TotalItemCount = cart.TotalItemCount()
	out.Totals = pricing.ComputeTotals(cart.Subtotal(prices))
	return out, nil
}
