package middleware

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/config"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://idp.example.com/realms/platform"
	testClientID = "user-federation"
	testSecret   = "test-jwt-secret-for-federation-tests"
)

func setupAuthTest(t *testing.T, mw echo.MiddlewareFunc) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		if c.Get(ContextKeyHostToken) == nil {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.NoContent(http.StatusNoContent)
	}, mw)
	return e
}

func performAuthRequest(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signHS256(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "identity-host",
		"exp": exp.Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestSharedSecretJWT(t *testing.T) {
	e := setupAuthTest(t, SharedSecretJWT(testSecret))

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "Valid", header: "Bearer " + signHS256(t, testSecret, time.Now().Add(time.Hour)), expectedStatus: http.StatusNoContent},
		{name: "Missing", expectedStatus: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "EmptyBearer", header: "Bearer ", expectedStatus: http.StatusUnauthorized},
		{name: "WrongSecret", header: "Bearer " + signHS256(t, "other-secret", time.Now().Add(time.Hour)), expectedStatus: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + signHS256(t, testSecret, time.Now().Add(-time.Hour)), expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performAuthRequest(e, tt.header)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestOIDC(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := oidc.NewVerifier(testIssuer,
		&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
		&oidc.Config{ClientID: testClientID, SupportedSigningAlgs: []string{oidc.RS256}},
	)
	e := setupAuthTest(t, OIDC(verifier))

	claims := func(aud string, exp time.Time) jwt.MapClaims {
		return jwt.MapClaims{
			"iss": testIssuer,
			"sub": "identity-host",
			"aud": aud,
			"iat": time.Now().Unix(),
			"exp": exp.Unix(),
		}
	}
	valid := time.Now().Add(time.Hour)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "Valid", header: "Bearer " + signRS256(t, key, claims(testClientID, valid)), expectedStatus: http.StatusNoContent},
		{name: "LowercaseScheme", header: "bearer " + signRS256(t, key, claims(testClientID, valid)), expectedStatus: http.StatusNoContent},
		{name: "Missing", expectedStatus: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "WrongAudience", header: "Bearer " + signRS256(t, key, claims("someone-else", valid)), expectedStatus: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + signRS256(t, key, claims(testClientID, time.Now().Add(-time.Hour))), expectedStatus: http.StatusUnauthorized},
		{name: "UnknownKey", header: "Bearer " + signRS256(t, otherKey, claims(testClientID, valid)), expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performAuthRequest(e, tt.header)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestNewHostAuth(t *testing.T) {
	ctx := context.Background()

	mw, err := NewHostAuth(ctx, config.AuthConfig{Mode: config.AuthModeNone})
	require.NoError(t, err)
	e := echo.New()
	e.GET("/open", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, mw)
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	mw, err = NewHostAuth(ctx, config.AuthConfig{Mode: config.AuthModeJWT, JWTSecret: testSecret})
	require.NoError(t, err)
	assert.NotNil(t, mw)

	_, err = NewHostAuth(ctx, config.AuthConfig{Mode: config.AuthModeJWT})
	assert.Error(t, err)

	_, err = NewHostAuth(ctx, config.AuthConfig{Mode: "basic"})
	assert.Error(t, err)
}
