package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Jose-carlos2025/App-gestor/internal/api/metrics"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Auth rejects the request with 401 unless it carries a valid bearer token.
// On success the identity is available through IdentityFrom.
func Auth(validator ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, reason := bearerToken(c.Request())
			if reason != "" {
				return unauthorized(c, reason)
			}

			identity, err := validator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				return unauthorized(c, "invalid_token")
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// OptionalAuth attaches the identity when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(validator ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, reason := bearerToken(c.Request()); reason == "" {
				if identity, err := validator.ValidateToken(c.Request().Context(), token); err == nil {
					SetIdentity(c, identity)
				}
			}
			return next(c)
		}
	}
}

// bearerToken extracts the token from the Authorization header. A non-empty
// reason means the header is missing or malformed.
func bearerToken(r *http.Request) (token, reason string) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", "missing_header"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "bad_scheme"
	}
	return strings.TrimSpace(parts[1]), ""
}

func unauthorized(c echo.Context, reason string) error {
	metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()

	msg := "invalid or expired token"
	switch reason {
	case "missing_header":
		msg = "missing authorization header"
	case "bad_scheme":
		msg = "invalid authorization header"
	}
	return c.JSON(http.StatusUnauthorized, errorBody{Success: false, Error: msg})
}
