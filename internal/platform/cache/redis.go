package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
)

const DefaultTTL = 15 * time.Minute

type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, baseTTL: ttl}
}

// cachedCart mirrors commerce.Cart including the fields hidden from API JSON.
type cachedCart struct {
	ID        uuid.UUID        `json:"id"`
	OwnerKey  string           `json:"owner_key"`
	UserID    *uuid.UUID       `json:"user_id,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Items     []cachedCartItem `json:"items"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type cachedCartItem struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Position  int       `json:"position"`
	AddedAt   time.Time `json:"added_at"`
}

func (r *RedisCache) Get(ctx context.Context, ownerKey string) (*commerce.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(ownerKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cc cachedCart
	if err := json.Unmarshal(data, &cc); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	cart := &commerce.Cart{
		ID:        cc.ID,
		OwnerKey:  cc.OwnerKey,
		UserID:    cc.UserID,
		SessionID: cc.SessionID,
		ExpiresAt: cc.ExpiresAt,
		CreatedAt: cc.CreatedAt,
		UpdatedAt: cc.UpdatedAt,
	}
	for _, it := range cc.Items {
		cart.Items = append(cart.Items, commerce.CartItem{
			ID:        it.ID,
			CartID:    cc.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Position:  it.Position,
			AddedAt:   it.AddedAt,
		})
	}
	return cart, nil
}

func (r *RedisCache) Set(ctx context.Context, cart *commerce.Cart) error {
	if cart == nil || cart.OwnerKey == "" {
		return nil
	}
	cc := cachedCart{
		ID:        cart.ID,
		OwnerKey:  cart.OwnerKey,
		UserID:    cart.UserID,
		SessionID: cart.SessionID,
		Items:     make([]cachedCartItem, 0, len(cart.Items)),
		ExpiresAt: cart.ExpiresAt,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, it := range cart.Items {
		cc.Items = append(cc.Items, cachedCartItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Position:  it.Position,
			AddedAt:   it.AddedAt,
		})
	}
	raw, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.Intn(60))*time.Second
	if until := time.Until(cart.ExpiresAt); !cart.ExpiresAt.IsZero() && until < ttl {
		ttl = until
	}
	if ttl <= 0 {
		return r.Delete(ctx, cart.OwnerKey)
	}
	if err := r.client.Set(ctx, cacheKey(cart.OwnerKey), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, ownerKey string) error {
	if err := r.client.Del(ctx, cacheKey(ownerKey)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(ownerKey string) string {
	return "cart:" + ownerKey
}
