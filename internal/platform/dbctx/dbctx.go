package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos fall back to their own handle when Tx is nil.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// New returns a Context with no transaction attached.
func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// Conn resolves the handle a repo should issue queries on.
func (c Context) Conn(fallback *gorm.DB) *gorm.DB {
	txx := c.Tx
	if txx == nil {
		txx = fallback
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return txx.WithContext(ctx)
}
