package app

import (
	"fmt"

	httpMW "github.com/yungbote/storefront-backend/internal/http/middleware"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) (Middleware, error) {
	log.Info("Wiring middleware...")
	verifier, err := identity.NewTokenVerifier(cfg.JWTSecretKey)
	if err != nil {
		return Middleware{}, fmt.Errorf("init token verifier: %w", err)
	}
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, verifier),
	}, nil
}
