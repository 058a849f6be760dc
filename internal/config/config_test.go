package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PASETO_KEY", strings.Repeat("k", 32))
	t.Setenv("AUTH_TOKEN_FORMAT", "")
	t.Setenv("TOKEN_DURATION", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, TokenFormatPaseto, cfg.Auth.TokenFormat)
	require.Zero(t, cfg.Auth.TokenDuration)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.RevocationTTL)
	require.Equal(t, "localhost:6379", cfg.Redis.Address())
	require.Contains(t, cfg.Database.ConnectionString(), "sslmode=disable")
}

func TestLoadRejectsShortPasetoKey(t *testing.T) {
	t.Setenv("AUTH_TOKEN_FORMAT", "paseto")
	t.Setenv("PASETO_KEY", "short")

	_, err := Load()
	require.EqualError(t, err, "PASETO_KEY must be exactly 32 bytes, got 5")
}

func TestLoadJWTFormat(t *testing.T) {
	t.Setenv("AUTH_TOKEN_FORMAT", "JWT")
	t.Setenv("JWT_SECRET", strings.Repeat("s", 40))
	t.Setenv("TOKEN_DURATION", "15m")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, TokenFormatJWT, cfg.Auth.TokenFormat)
	require.Equal(t, 15*time.Minute, cfg.Auth.TokenDuration)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	t.Setenv("AUTH_TOKEN_FORMAT", "opaque")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported AUTH_TOKEN_FORMAT")
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "30")
	require.Equal(t, 30*time.Second, getDurationEnv("SOME_TIMEOUT", time.Second))

	t.Setenv("SOME_TIMEOUT", "2h")
	require.Equal(t, 2*time.Hour, getDurationEnv("SOME_TIMEOUT", time.Second))

	t.Setenv("SOME_TIMEOUT", "soon")
	require.Equal(t, time.Second, getDurationEnv("SOME_TIMEOUT", time.Second))
}

func TestGetSliceEnv(t *testing.T) {
	t.Setenv("ORIGINS", " https://a.example , ,https://b.example")
	require.Equal(t, []string{"https://a.example", "https://b.example"}, getSliceEnv("ORIGINS", nil))

	t.Setenv("ORIGINS", " , ")
	require.Equal(t, []string{"fallback"}, getSliceEnv("ORIGINS", []string{"fallback"}))
}

func TestGetKeyEnvAcceptsHex(t *testing.T) {
	t.Setenv("PASETO_KEY", strings.Repeat("ab", 32))
	key := getKeyEnv("PASETO_KEY")
	require.Len(t, key, 32)
	require.Equal(t, byte(0xab), key[0])

	// 64 characters that are not hex stay raw
	t.Setenv("PASETO_KEY", strings.Repeat("z", 64))
	require.Len(t, getKeyEnv("PASETO_KEY"), 64)
}
