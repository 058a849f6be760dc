package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type jwtClaims struct {
	UserID *int64 `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// JWTService signs HS256 tokens carrying the user id
type JWTService struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewJWTService builds a service keyed by secret. A zero duration issues
// tokens without an exp claim.
func NewJWTService(secret []byte, duration time.Duration) (*JWTService, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt: secret must be provided")
	}
	return &JWTService{
		secret:   secret,
		duration: duration,
		now:      time.Now,
	}, nil
}

// CreateToken signs a token for userID
func (s *JWTService) CreateToken(userID int64) (string, error) {
	now := s.now()

	claims := jwtClaims{
		UserID: &userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.duration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.duration))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the signature and returns the claims
func (s *JWTService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims.UserID == nil {
		return nil, ErrInvalidToken
	}

	out := &TokenClaims{UserID: *claims.UserID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		out.ExpiresAt = &exp
	}
	return out, nil
}
