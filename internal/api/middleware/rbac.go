package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jose-carlos2025/App-gestor/internal/api/metrics"
)

// RBAC lets the request through only when the authenticated role is one of
// allowedRoles. It must run after Auth; an anonymous request is a 401.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return unauthorized(c, "missing_header")
			}
			if _, ok := allowed[identity.Role]; !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
				return c.JSON(http.StatusForbidden, errorBody{Success: false, Error: "access forbidden"})
			}
			return next(c)
		}
	}
}
