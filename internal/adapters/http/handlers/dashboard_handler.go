package handlers

import (
	"capex-approval/internal/core/domain"
	"capex-approval/internal/core/services"
	"capex-approval/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Stats returns the aggregate dashboard payload
// @Summary Dashboard statistics
// @Description Totals plus status, company, month and category breakdowns
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Stats(c.Context())
	if err != nil {
		if domain.IsUpstreamError(err) {
			return response.BadGateway(c, "Record store unavailable")
		}
		return response.InternalServerError(c, "Failed to compute dashboard statistics")
	}

	return response.Success(c, "Dashboard statistics retrieved", stats)
}

// Recent returns the latest requests
// @Summary Recent requests
// @Description The most recently created requests, newest first
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of requests (default 5)"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard/recent [get]
func (h *DashboardHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)

	records, err := h.dashboardService.Recent(c.Context(), limit)
	if err != nil {
		if domain.IsUpstreamError(err) {
			return response.BadGateway(c, "Record store unavailable")
		}
		return response.InternalServerError(c, "Failed to get recent requests")
	}

	return response.Success(c, "Recent requests retrieved", records)
}

// UserStats returns per-requester cross tabulation
// @Summary Per-user statistics
// @Description Request counts and amounts per requester, broken down by status (Admin only)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/user-stats [get]
func (h *DashboardHandler) UserStats(c *fiber.Ctx) error {
	users, err := h.dashboardService.UserStats(c.Context())
	if err != nil {
		if domain.IsUpstreamError(err) {
			return response.BadGateway(c, "Record store unavailable")
		}
		return response.InternalServerError(c, "Failed to compute user statistics")
	}

	return response.Success(c, "User statistics retrieved", users)
}
