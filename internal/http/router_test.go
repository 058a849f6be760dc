package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/redmonkez12/eats-api/docs"
	"github.com/redmonkez12/eats-api/internal/account"
	"github.com/redmonkez12/eats-api/internal/auth"
	"github.com/redmonkez12/eats-api/internal/config"
	"github.com/redmonkez12/eats-api/internal/database/testutil"
	"github.com/redmonkez12/eats-api/internal/logging"
	"github.com/redmonkez12/eats-api/internal/password"
	"github.com/redmonkez12/eats-api/internal/user"
	"github.com/redmonkez12/eats-api/internal/verification"
)

type nopMailer struct{}

func (nopMailer) SendVerificationEmail(context.Context, string, string) error { return nil }

func newTestRouter(t *testing.T, env string) http.Handler {
	t.Helper()

	db := testutil.NewTestDB(t)
	store := user.NewStore(db, verification.NewLedger(db),
		password.NewHasher(password.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}),
		nopMailer{}, logging.Discard(), time.Second)

	tokens, err := auth.NewJWTService([]byte(strings.Repeat("s", 32)), time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{Server: config.ServerConfig{Env: env, TrustedOrigins: []string{"https://app.eats.test"}}}
	mw := auth.NewMiddleware(auth.NewResolver(tokens, store, nil))
	return NewRouter(cfg, account.NewHandler(store, tokens, nil, time.Hour), mw, logging.Discard())
}

func TestHealthAndSecurityHeaders(t *testing.T) {
	router := newTestRouter(t, "prod")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "api is running")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, "prod")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSwaggerOnlyInDevelopment(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(t, "prod").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	newTestRouter(t, "dev").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflightAllowsTokenHeader(t *testing.T) {
	router := newTestRouter(t, "prod")

	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://app.eats.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", auth.TokenHeader)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.eats.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), strings.ToLower(auth.TokenHeader))
}

func TestRouterSignupLoginFlow(t *testing.T) {
	router := newTestRouter(t, "prod")

	post := func(path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set(auth.TokenHeader, token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var out map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return w, out
	}

	w, out := post("/account", `{"email":"a@x.com","password":"pw1","role":"Client"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, true, out["ok"])

	_, out = post("/account/login", `{"email":"a@x.com","password":"pw1"}`, "")
	token, _ := out["token"].(string)
	require.NotEmpty(t, token)

	// logout without a revocation store still succeeds
	w, out = post("/account/logout", `{}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, out["ok"])

	w, out = post("/account/logout", `{}`, "")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Forbidden", out["error"])
}
