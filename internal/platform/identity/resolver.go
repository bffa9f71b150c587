package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
)

// Resolver answers who is calling. Services depend on this, never on transport.
type Resolver interface {
	UserID(ctx context.Context) (uuid.UUID, error)
	Owner(ctx context.Context) (commerce.Owner, error)
	IsAdmin(ctx context.Context) bool
}

type requestResolver struct{}

// NewRequestResolver reads the identity the auth middleware stored on the context.
func NewRequestResolver() Resolver { return requestResolver{} }

func (requestResolver) UserID(ctx context.Context) (uuid.UUID, error) {
	const op = "identity.UserID"
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, commerce.AuthenticationRequiredError(op)
	}
	return rd.UserID, nil
}

// Owner prefers the signed-in user over an anonymous cart session.
func (requestResolver) Owner(ctx context.Context) (commerce.Owner, error) {
	const op = "identity.Owner"
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return commerce.Owner{}, commerce.AuthenticationRequiredError(op)
	}
	if rd.UserID != uuid.Nil {
		return commerce.UserOwner(rd.UserID), nil
	}
	owner := commerce.SessionOwner(rd.CartSession)
	if !owner.Valid() {
		return commerce.Owner{}, commerce.AuthenticationRequiredError(op)
	}
	return owner, nil
}

func (requestResolver) IsAdmin(ctx context.Context) bool {
	return ctxutil.GetRequestData(ctx).IsAdmin()
}
