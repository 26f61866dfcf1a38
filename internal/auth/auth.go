// Package auth extracts the caller's bearer token for forwarding to the CKAN
// backend, optionally verifying it against an OIDC issuer first. Token
// issuance is out of scope; the adapter only consumes pre-issued tokens.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc"
	"github.com/labstack/echo/v4"
)

// tokenContextKey is the echo context key the extracted bearer token is
// stored under.
const tokenContextKey = "access_token"

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Auth extracts and optionally verifies bearer tokens on inbound requests.
type Auth struct {
	verifier *oidc.IDTokenVerifier
	logger   Logger
}

// New creates a new Auth. When issuer is empty no local verification happens
// and tokens are passed through to CKAN, which performs its own
// authorization; otherwise access tokens are verified against the issuer.
func New(ctx context.Context, issuer string, logger Logger) (*Auth, error) {
	var verifier *oidc.IDTokenVerifier
	if issuer != "" {
		provider, err := oidc.NewProvider(ctx, issuer)
		if err != nil {
			return nil, err
		}
		// Access tokens typically carry an API audience rather than a client
		// ID, so the client ID check is skipped.
		verifier = provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	}
	return &Auth{verifier: verifier, logger: logger}, nil
}

// RequireToken is an echo middleware that requires a bearer token on the
// request and stores it in the request context for the handlers.
func (a *Auth) RequireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing Authorization header")
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" || token == header {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be a bearer token")
			}

			if a.verifier != nil {
				if _, err := a.verifier.Verify(c.Request().Context(), token); err != nil {
					a.logger.Debug("token verification failed: %v", err)
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
				}
			}

			c.Set(tokenContextKey, token)
			return next(c)
		}
	}
}

// Token returns the bearer token extracted by RequireToken, or an empty
// string when the middleware did not run.
func Token(c echo.Context) string {
	token, _ := c.Get(tokenContextKey).(string)
	return token
}
