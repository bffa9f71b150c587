package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData carries the caller identity resolved by the auth middleware.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	Role        string
	// CartSession is the anonymous cart token sent by guests.
	CartSession string
}

func (rd *RequestData) IsAdmin() bool {
	return rd != nil && rd.UserID != uuid.Nil && rd.Role == "admin"
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
