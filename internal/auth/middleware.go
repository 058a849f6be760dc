package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/redmonkez12/eats-api/internal/httputil"
	"github.com/redmonkez12/eats-api/internal/logging"
	"github.com/redmonkez12/eats-api/internal/metrics"
	"github.com/redmonkez12/eats-api/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey   ContextKey = "user"
	ClaimsContextKey ContextKey = "claims"
	TokenContextKey  ContextKey = "token"
)

// TokenHeader is the alternate header carrying a raw session token
const TokenHeader = "X-JWT"

// Middleware attaches identities to requests and guards protected routes
type Middleware struct {
	resolver *Resolver
}

func NewMiddleware(resolver *Resolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// Identify resolves the request's token, if any, and stores the user in
// the request context. It never rejects a request.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		res := m.resolver.Resolve(r.Context(), token)

		if !res.Identified() {
			metrics.IdentityResolutions.WithLabelValues("anonymous", res.Reason).Inc()
			if token != "" {
				logging.GetLoggerFromContext(r.Context()).Debug("request left anonymous", "reason", res.Reason)
			}
			next.ServeHTTP(w, r)
			return
		}

		metrics.IdentityResolutions.WithLabelValues("identified", "").Inc()
		ctx := WithIdentity(r.Context(), res.User, res.Claims, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests without an attached identity with a
// uniform Forbidden response
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := Guard(r.Context()); err != nil {
			metrics.AccessDenied.Inc()
			httputil.RespondError(w, r, "Forbidden", httputil.CodeForbidden, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractToken reads a bearer token from the Authorization header, falling
// back to the X-JWT header. A malformed Authorization header yields "".
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get(TokenHeader))
}

// WithIdentity returns a context carrying the resolved user
func WithIdentity(ctx context.Context, u *user.View, claims *TokenClaims, token string) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, u)
	ctx = context.WithValue(ctx, ClaimsContextKey, claims)
	return context.WithValue(ctx, TokenContextKey, token)
}

// Guard returns the identity attached to ctx or ErrForbidden
func Guard(ctx context.Context) (*user.View, error) {
	u, ok := GetUserFromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}
	return u, nil
}

// GetUserFromContext extracts the user from the request context
func GetUserFromContext(ctx context.Context) (*user.View, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.View)
	return u, ok && u != nil
}

// GetClaimsFromContext extracts the verified token claims
func GetClaimsFromContext(ctx context.Context) (*TokenClaims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*TokenClaims)
	return c, ok && c != nil
}

// GetTokenFromContext extracts the raw token the identity was resolved from
func GetTokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(TokenContextKey).(string)
	return t, ok && t != ""
}
