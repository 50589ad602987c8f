package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
)

type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// List handles GET /api/categories.
//
// @Summary      List task categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  categoriesEnvelope
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, categoriesEnvelope{Success: true, Categories: domain.Categories()})
}
