package auth

import (
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"
)

const claimUserID = "user_id"

// PasetoService handles PASETO token creation and validation.
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305), so any
// modified byte fails authentication.
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	duration     time.Duration
	now          func() time.Time
}

// NewPasetoService builds a service keyed by symmetricKey. A zero duration
// issues tokens without an expiry claim.
func NewPasetoService(symmetricKey []byte, duration time.Duration) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
		duration:     duration,
		now:          time.Now,
	}, nil
}

// CreateToken generates a new PASETO v4.local token for userID
func (s *PasetoService) CreateToken(userID int64) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	if s.duration > 0 {
		token.SetExpiration(now.Add(s.duration))
	}
	token.SetString(claimUserID, strconv.FormatInt(userID, 10))

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken decrypts a PASETO v4.local token and returns its claims.
// Expiry is checked here against the service clock rather than by parser
// rules, since tokens without exp are valid.
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	parser := paseto.MakeParser(nil)

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	raw, err := token.GetString(claimUserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims := &TokenClaims{UserID: userID}
	if issuedAt, err := token.GetIssuedAt(); err == nil {
		claims.IssuedAt = issuedAt
	}
	if expiresAt, err := token.GetExpiration(); err == nil {
		if !s.now().Before(expiresAt) {
			return nil, ErrExpiredToken
		}
		claims.ExpiresAt = &expiresAt
	}

	return claims, nil
}
