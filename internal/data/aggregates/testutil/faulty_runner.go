package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/aggregates"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

// FaultyTxRunner runs the body in a real transaction on DB. When FailCommit is set the
// transaction is rolled back in place of the commit and FailCommit is returned, so the
// body's writes are visible to the body and to nobody else.
type FaultyTxRunner struct {
	DB         *gorm.DB
	FailCommit error

	mu        sync.Mutex
	commits   int
	rollbacks int
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
		r.rollback(tx)
		return err
	}
	if r.FailCommit != nil {
		r.rollback(tx)
		return r.FailCommit
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}
	r.mu.Lock()
	r.commits++
	r.mu.Unlock()
	return nil
}

func (r *FaultyTxRunner) rollback(tx *gorm.DB) {
	_ = tx.Rollback().Error
	r.mu.Lock()
	r.rollbacks++
	r.mu.Unlock()
}

func (r *FaultyTxRunner) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

func (r *FaultyTxRunner) Rollbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rollbacks
}
