package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var (
	testPasetoKey = []byte("0123456789abcdef0123456789abcdef")
	testJWTSecret = []byte("jwt-secret-jwt-secret-jwt-secret")
)

func newServices(t *testing.T, duration time.Duration, now func() time.Time) map[string]TokenService {
	t.Helper()

	p, err := NewPasetoService(testPasetoKey, duration)
	require.NoError(t, err)
	p.now = now

	j, err := NewJWTService(testJWTSecret, duration)
	require.NoError(t, err)
	j.now = now

	return map[string]TokenService{"paseto": p, "jwt": j}
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// corrupt replaces the character at i with a different character
func corrupt(token string, i int) string {
	b := []byte(token)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for name, svc := range newServices(t, 0, fixedClock(now)) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []int64{1, 42, 1 << 40} {
				token, err := svc.CreateToken(id)
				require.NoError(t, err)
				require.NotEmpty(t, token)

				claims, err := svc.VerifyToken(token)
				require.NoError(t, err)
				require.Equal(t, id, claims.UserID)
				require.True(t, claims.IssuedAt.Equal(now))
				require.Nil(t, claims.ExpiresAt)
			}
		})
	}
}

func TestTokenCorruptedCharacterRejected(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for name, svc := range newServices(t, 0, fixedClock(now)) {
		t.Run(name, func(t *testing.T) {
			token, err := svc.CreateToken(7)
			require.NoError(t, err)

			for i := 0; i < len(token); i++ {
				_, err := svc.VerifyToken(corrupt(token, i))
				require.ErrorIs(t, err, ErrInvalidToken, "position %d", i)
			}
		})
	}
}

func TestTokensIssuedInSameInstantDiffer(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for name, svc := range newServices(t, time.Hour, fixedClock(now)) {
		t.Run(name, func(t *testing.T) {
			first, err := svc.CreateToken(5)
			require.NoError(t, err)
			second, err := svc.CreateToken(5)
			require.NoError(t, err)
			require.NotEqual(t, first, second)

			for _, token := range []string{first, second} {
				claims, err := svc.VerifyToken(token)
				require.NoError(t, err)
				require.Equal(t, int64(5), claims.UserID)
			}
		})
	}
}

func TestTokenMalformedInput(t *testing.T) {
	for name, svc := range newServices(t, 0, time.Now) {
		t.Run(name, func(t *testing.T) {
			for _, in := range []string{"", "garbage", "v4.local.", "a.b.c", strings.Repeat(".", 10)} {
				_, err := svc.VerifyToken(in)
				require.ErrorIs(t, err, ErrInvalidToken, "input %q", in)
			}
		})
	}
}

func TestTokenFromOtherKeyRejected(t *testing.T) {
	issuerP, err := NewPasetoService(testPasetoKey, 0)
	require.NoError(t, err)
	verifierP, err := NewPasetoService([]byte("ffffffffffffffffffffffffffffffff"), 0)
	require.NoError(t, err)

	token, err := issuerP.CreateToken(1)
	require.NoError(t, err)
	_, err = verifierP.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	issuerJ, err := NewJWTService(testJWTSecret, 0)
	require.NoError(t, err)
	verifierJ, err := NewJWTService([]byte("another-secret-another-secret-xx"), 0)
	require.NoError(t, err)

	token, err = issuerJ.CreateToken(1)
	require.NoError(t, err)
	_, err = verifierJ.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	current := issued
	clock := func() time.Time { return current }

	for name, svc := range newServices(t, time.Hour, clock) {
		t.Run(name, func(t *testing.T) {
			current = issued
			token, err := svc.CreateToken(9)
			require.NoError(t, err)

			current = issued.Add(30 * time.Minute)
			claims, err := svc.VerifyToken(token)
			require.NoError(t, err)
			require.NotNil(t, claims.ExpiresAt)
			require.True(t, claims.ExpiresAt.Equal(issued.Add(time.Hour)))

			current = issued.Add(2 * time.Hour)
			_, err = svc.VerifyToken(token)
			require.ErrorIs(t, err, ErrExpiredToken)
		})
	}
}

func TestJWTMissingUserIDRejected(t *testing.T) {
	svc, err := NewJWTService(testJWTSecret, 0)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "someone"}).SignedString(testJWTSecret)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsOtherAlgorithms(t *testing.T) {
	svc, err := NewJWTService(testJWTSecret, 0)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"id": 1}).SignedString(testJWTSecret)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewServicesValidateKeys(t *testing.T) {
	_, err := NewPasetoService([]byte("short"), 0)
	require.EqualError(t, err, "symmetric key must be exactly 32 bytes, got 5")

	_, err = NewJWTService(nil, 0)
	require.EqualError(t, err, "jwt: secret must be provided")
}
