package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

const recentTaskCount = 5

type DashboardHandler struct {
	service ports.TaskService
}

func NewDashboardHandler(service ports.TaskService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Dashboard handles GET /api/dashboard/stats.
//
// @Summary      Dashboard counters and recent tasks
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardEnvelope
// @Failure      401  {object}  errorResponse
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		return err
	}
	recent, err := h.service.Recent(ctx, recentTaskCount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardEnvelope{
		Success:     true,
		Stats:       toStatsResponse(stats),
		RecentTasks: toTaskResponses(recent, h.service.Today()),
	})
}

// Stats handles GET /api/tasks/stats.
//
// @Summary      Task counters
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsEnvelope
// @Failure      401  {object}  errorResponse
// @Router       /api/tasks/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsEnvelope{Success: true, Stats: toStatsResponse(stats)})
}

// Overview handles GET /api/dashboard/overview.
//
// @Summary      Counters plus per-category totals
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  overviewEnvelope
// @Failure      401  {object}  errorResponse
// @Router       /api/dashboard/overview [get]
func (h *DashboardHandler) Overview(c echo.Context) error {
	overview, err := h.service.Overview(c.Request().Context())
	if err != nil {
		return err
	}

	categories := make([]categoryCountResponse, 0, len(overview.Categories))
	for _, cc := range overview.Categories {
		categories = append(categories, categoryCountResponse{
			ID:    cc.Category.ID,
			Name:  cc.Category.Name,
			Icon:  cc.Category.Icon,
			Count: cc.Count,
		})
	}

	return c.JSON(http.StatusOK, overviewEnvelope{
		Success:    true,
		Stats:      toStatsResponse(overview.Stats),
		Categories: categories,
	})
}
