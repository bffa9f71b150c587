package services

import (
	"context"
	"time"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

const (
	DefaultJanitorInterval = time.Hour
	janitorBatchSize       = 500
)

// CartJanitor purges carts whose expiry has passed.
type CartJanitor struct {
	log      *logger.Logger
	carts    repos.CartRepo
	interval time.Duration
	now      func() time.Time
}

func NewCartJanitor(baseLog *logger.Logger, carts repos.CartRepo, interval time.Duration) *CartJanitor {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	return &CartJanitor{
		log:      baseLog.With("service", "CartJanitor"),
		carts:    carts,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (j *CartJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
			j.log.Warn("cart sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep deletes expired carts in batches and returns how many were removed.
func (j *CartJanitor) Sweep(ctx context.Context) (int64, error) {
	now := j.now()
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := j.carts.DeleteExpired(dbctx.New(ctx), now, janitorBatchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n < janitorBatchSize {
			break
		}
	}
	if total > 0 {
		j.log.Info("expired carts purged", "count", total)
	}
	return total, nil
}
