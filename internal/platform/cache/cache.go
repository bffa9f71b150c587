// Package cache holds the read-through cart cache. The database stays the source of truth;
// product data is never cached here.
package cache

import (
	"context"
	"errors"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
)

type CartCache interface {
	Get(ctx context.Context, ownerKey string) (*commerce.Cart, error)
	Set(ctx context.Context, cart *commerce.Cart) error
	Delete(ctx context.Context, ownerKey string) error
}

var ErrCacheMiss = errors.New("cache miss")

type noopCache struct{}

// Noop is used when no Redis is configured; every Get misses.
func Noop() CartCache { return noopCache{} }

func (noopCache) Get(context.Context, string) (*commerce.Cart, error) { return nil, ErrCacheMiss }
func (noopCache) Set(context.Context, *commerce.Cart) error            { return nil }
func (noopCache) Delete(context.Context, string) error                 { return nil }
