package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by the middleware in this package.
const (
	ContextToken    = "access_token"
	ContextIdentity = "identity"
	ContextProfile  = "profile"
)

// AuthConfig controls how Auth finds the access token.
type AuthConfig struct {
	// AllowQuery also accepts the token from the access_token query
	// parameter. EventSource clients cannot set headers.
	AllowQuery bool
	// Optional lets requests without a token through. A malformed
	// Authorization header is still rejected.
	Optional bool
}

// Auth extracts the bearer token and stores it in the context. The token is
// opaque here; validating it is up to the session provider.
func Auth() echo.MiddlewareFunc {
	return AuthWithConfig(AuthConfig{})
}

func AuthWithConfig(cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			if token == "" && cfg.AllowQuery {
				token = strings.TrimSpace(c.QueryParam("access_token"))
			}
			if token == "" && !cfg.Optional {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			c.Set(ContextToken, token)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return token, nil
}
