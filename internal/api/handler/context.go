package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/Jose-carlos2025/App-gestor/internal/api/middleware"
	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
)

// currentIdentity returns the identity attached by the auth middleware.
// A missing identity means the route was wired without Auth; fail closed.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	id := middleware.IdentityFrom(c)
	if id == nil || id.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return id, nil
}
