// Package middleware authenticates the identity host calling the federation API.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/config"
	"github.com/coreos/go-oidc/v3/oidc"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Context keys set by the authentication middleware.
const (
	ContextKeyHostToken = "hostToken"
)

// NewHostAuth builds the middleware for the configured authentication mode.
// The oidc mode discovers the issuer's keys, so ctx bounds that request.
func NewHostAuth(ctx context.Context, cfg config.AuthConfig) (echo.MiddlewareFunc, error) {
	switch cfg.Mode {
	case config.AuthModeNone:
		log.Warn().Msg("Federation API authentication is disabled")
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }, nil
	case config.AuthModeJWT:
		if cfg.JWTSecret == "" {
			return nil, errors.New("jwt secret must be set")
		}
		return SharedSecretJWT(cfg.JWTSecret), nil
	case config.AuthModeOIDC:
		provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to discover oidc provider: %w", err)
		}
		return OIDC(provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// SharedSecretJWT accepts HS256 bearer tokens signed with secret. Every
// rejection, including a missing or malformed header, answers 401.
func SharedSecretJWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ContextKey:    ContextKeyHostToken,
		ErrorHandler: func(c echo.Context, err error) error {
			log.Warn().Err(err).Str("remote_ip", c.RealIP()).Msg("Rejected host token")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing token")
		},
	})
}

// OIDC accepts bearer tokens that verifier validates. The verified
// *oidc.IDToken is stored under ContextKeyHostToken.
func OIDC(verifier *oidc.IDTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			scheme, rawToken, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || rawToken == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format. Expected 'Bearer <token>'")
			}

			token, err := verifier.Verify(c.Request().Context(), rawToken)
			if err != nil {
				log.Warn().Err(err).Str("remote_ip", c.RealIP()).Msg("Rejected host token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ContextKeyHostToken, token)
			return next(c)
		}
	}
}
