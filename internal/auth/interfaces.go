package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redmonkez12/eats-api/internal/user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrForbidden    = errors.New("forbidden")
)

// TokenClaims is what a verified session token asserts
type TokenClaims struct {
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt *time.Time // nil when the token does not expire
}

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID int64) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserFinder loads the identity a token points at
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*user.View, error)
}

// RevocationStore remembers tokens invalidated by logout
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
