package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
)

const identityKey = "identity"

type identityCtxKey struct{}

// SetIdentity attaches id to both the echo context and the request context.
func SetIdentity(c echo.Context, id *domain.Identity) {
	c.Set(identityKey, id)
	req := c.Request()
	c.SetRequest(req.WithContext(context.WithValue(req.Context(), identityCtxKey{}, id)))
}

// IdentityFrom returns the identity set by Auth or OptionalAuth, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(identityKey).(*domain.Identity)
	return id
}

// IdentityFromContext is the context.Context counterpart of IdentityFrom.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityCtxKey{}).(*domain.Identity)
	return id
}
