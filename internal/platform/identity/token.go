// Package identity verifies bearer tokens and resolves the caller of a request.
// Token issuance belongs to the account service; Signer exists for tooling and tests.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const RoleAdmin = "admin"

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Principal struct {
	UserID uuid.UUID
	Role   string
}

type TokenVerifier struct {
	secret []byte
	leeway time.Duration
}

func NewTokenVerifier(secret string) (*TokenVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("missing JWT secret")
	}
	return &TokenVerifier{secret: []byte(secret), leeway: 30 * time.Second}, nil
}

// Verify checks an HS256 token and returns its subject and role.
func (v *TokenVerifier) Verify(tokenString string) (Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Principal{}, ErrInvalidToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return Principal{UserID: userID, Role: strings.ToLower(strings.TrimSpace(claims.Role))}, nil
}

type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

func (s *Signer) Sign(p Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
