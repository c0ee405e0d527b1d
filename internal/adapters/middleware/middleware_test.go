package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IANDYI/longevity-service/internal/adapters/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "8f9a4c2e-1d3b-4f6a-9c8e-2b7d5e1f0a93",
		"role": role,
		"jti":  "jti-" + role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func newAuth(t *testing.T, key *rsa.PrivateKey) *middleware.AuthMiddleware {
	t.Helper()
	m := middleware.NewAuthMiddleware(&key.PublicKey, zap.NewNop())
	t.Cleanup(m.Stop)
	return m
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	w.Write([]byte(userID))
}

func serve(h http.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/model", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRequireAuth_ValidToken(t *testing.T) {
	key := newKey(t)
	m := newAuth(t, key)
	token := signToken(t, key, validClaims("USER"))

	rec := serve(m.RequireAuth(echoUser), "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "8f9a4c2e-1d3b-4f6a-9c8e-2b7d5e1f0a93", rec.Body.String())

	// second call is served from the JTI cache
	rec = serve(m.RequireAuth(echoUser), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_Rejects(t *testing.T) {
	key := newKey(t)
	other := newKey(t)
	m := newAuth(t, key)

	expired := validClaims("USER")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noRole := validClaims("USER")
	delete(noRole, "role")
	noExp := validClaims("USER")
	delete(noExp, "exp")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired", "Bearer " + signToken(t, key, expired)},
		{"missing role", "Bearer " + signToken(t, key, noRole)},
		{"missing exp", "Bearer " + signToken(t, key, noExp)},
		{"wrong key", "Bearer " + signToken(t, other, validClaims("USER"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(m.RequireAuth(echoUser), tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAuth_RejectsHMACToken(t *testing.T) {
	key := newKey(t)
	m := newAuth(t, key)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("USER")).SignedString([]byte("secret"))
	require.NoError(t, err)

	rec := serve(m.RequireAuth(echoUser), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	key := newKey(t)
	m := newAuth(t, key)
	h := m.RequireRole(middleware.RoleAdmin, echoUser)

	rec := serve(h, "Bearer "+signToken(t, key, validClaims("USER")))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, "Bearer "+signToken(t, key, validClaims(middleware.RoleAdmin)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := middleware.MetricsMiddleware(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
