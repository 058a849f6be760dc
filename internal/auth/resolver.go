package auth

import (
	"context"
	"errors"

	"github.com/redmonkez12/eats-api/internal/user"
)

// Reasons a request stays anonymous
const (
	ReasonMissingToken     = "missing token"
	ReasonInvalidToken     = "invalid token"
	ReasonExpiredToken     = "expired token"
	ReasonRevokedToken     = "revoked token"
	ReasonRevocationFailed = "revocation check failed"
	ReasonUserNotFound     = "user not found"
	ReasonLookupFailed     = "user lookup failed"
)

// Resolution is the outcome of resolving a token. User is nil when the
// request stays anonymous, in which case Reason says why.
type Resolution struct {
	User   *user.View
	Claims *TokenClaims
	Reason string
}

// Identified reports whether an identity was resolved
func (r Resolution) Identified() bool {
	return r.User != nil
}

// Resolver turns a presented token into an identity. It never fails:
// every problem yields an anonymous Resolution.
type Resolver struct {
	tokens  TokenService
	users   UserFinder
	revoked RevocationStore
}

// NewResolver wires the resolver. revoked may be nil when logout
// revocation is not deployed.
func NewResolver(tokens TokenService, users UserFinder, revoked RevocationStore) *Resolver {
	return &Resolver{tokens: tokens, users: users, revoked: revoked}
}

// Resolve verifies token and loads the user it names
func (r *Resolver) Resolve(ctx context.Context, token string) Resolution {
	if token == "" {
		return Resolution{Reason: ReasonMissingToken}
	}

	claims, err := r.tokens.VerifyToken(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return Resolution{Reason: ReasonExpiredToken}
		}
		return Resolution{Reason: ReasonInvalidToken}
	}

	if r.revoked != nil {
		revoked, err := r.revoked.IsRevoked(ctx, token)
		if err != nil {
			return Resolution{Reason: ReasonRevocationFailed}
		}
		if revoked {
			return Resolution{Reason: ReasonRevokedToken}
		}
	}

	found, err := r.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Resolution{Reason: ReasonUserNotFound}
		}
		return Resolution{Reason: ReasonLookupFailed}
	}

	return Resolution{User: found, Claims: claims}
}
