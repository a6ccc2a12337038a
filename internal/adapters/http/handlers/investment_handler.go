package handlers

import (
	"errors"

	"capex-approval/internal/adapters/http/middleware"
	"capex-approval/internal/core/domain"
	"capex-approval/internal/core/services"
	"capex-approval/internal/pkg/pagination"
	"capex-approval/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// InvestmentHandler handles investment request endpoints
type InvestmentHandler struct {
	investmentService *services.InvestmentService
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(investmentService *services.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{
		investmentService: investmentService,
	}
}

// UpdateRequest represents a partial update body; absent fields are
// left untouched
type UpdateRequest struct {
	Title      *string             `json:"title"`
	Company    *string             `json:"company"`
	Team       *string             `json:"team"`
	User       *string             `json:"user"`
	Category   *string             `json:"category"`
	Detail     *string             `json:"detail"`
	Amount     *float64            `json:"amount"`
	DetailSum  *float64            `json:"detailAmount"`
	Items      []domain.DetailItem `json:"detailItems"`
	Month      *string             `json:"month"`
	Project    *string             `json:"project"`
	ProjectSOP *string             `json:"projectSOP"`
}

// StatusRequest represents an admin decision body
type StatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// Create stores a new investment request
// @Summary Create investment request
// @Description Create a new investment request owned by the caller
// @Tags Investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateInput true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /investments [post]
func (h *InvestmentHandler) Create(c *fiber.Ctx) error {
	user := middleware.CallerFromCtx(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	rec, err := h.investmentService.Create(c.Context(), &input, user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTitleRequired):
			return response.BadRequest(c, "Title is required")
		case domain.IsUpstreamError(err):
			return response.BadGateway(c, "Record store unavailable")
		default:
			return response.InternalServerError(c, "Failed to create investment request")
		}
	}

	return response.Created(c, "Investment request created", rec)
}

// List returns investment requests with filters and pagination
// @Summary List investment requests
// @Description List investment requests, newest first, with optional status, company and month filters
// @Tags Investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param company query string false "Filter by company"
// @Param month query string false "Filter by month (YYYY-MM)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /investments [get]
func (h *InvestmentHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	records, err := h.investmentService.List(c.Context(), &services.ListInput{
		Status:  c.Query("status"),
		Company: c.Query("company"),
		Month:   c.Query("month"),
		Page:    params.Page,
		Limit:   params.Limit,
	})
	if err != nil {
		if domain.IsUpstreamError(err) {
			return response.BadGateway(c, "Record store unavailable")
		}
		return response.InternalServerError(c, "Failed to list investment requests")
	}

	return response.Success(c, "Investment requests retrieved", fiber.Map{
		"items": records,
		"page":  params.Page,
		"limit": params.Limit,
		"count": len(records),
	})
}

// GetByID returns a single investment request
// @Summary Get investment request
// @Description Get an investment request by its ID
// @Tags Investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /investments/{id} [get]
func (h *InvestmentHandler) GetByID(c *fiber.Ctx) error {
	rec, err := h.investmentService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapError(c, err, "Failed to get investment request")
	}

	return response.Success(c, "Investment request retrieved", rec)
}

// Update modifies an investment request
// @Summary Update investment request
// @Description Update content fields of a request; owners and admins only
// @Tags Investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body UpdateRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /investments/{id} [put]
func (h *InvestmentHandler) Update(c *fiber.Ctx) error {
	user := middleware.CallerFromCtx(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	upd := &domain.RecordUpdate{
		Title:      req.Title,
		Company:    req.Company,
		Team:       req.Team,
		User:       req.User,
		Category:   req.Category,
		Detail:     req.Detail,
		Amount:     req.Amount,
		DetailSum:  req.DetailSum,
		Items:      req.Items,
		Month:      req.Month,
		Project:    req.Project,
		ProjectSOP: req.ProjectSOP,
	}

	rec, err := h.investmentService.Update(c.Context(), c.Params("id"), upd, user)
	if err != nil {
		return h.mapError(c, err, "Failed to update investment request")
	}

	return response.Success(c, "Investment request updated", rec)
}

// Delete removes an investment request
// @Summary Delete investment request
// @Description Delete a request; owners and admins only
// @Tags Investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /investments/{id} [delete]
func (h *InvestmentHandler) Delete(c *fiber.Ctx) error {
	user := middleware.CallerFromCtx(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.investmentService.Delete(c.Context(), c.Params("id"), user); err != nil {
		return h.mapError(c, err, "Failed to delete investment request")
	}

	return response.Success(c, "Investment request deleted", nil)
}

// ChangeStatus applies an admin decision
// @Summary Change request status
// @Description Set a request to Approved, Rejected or Pending (Admin only)
// @Tags Investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body StatusRequest true "Decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /investments/{id}/status [patch]
func (h *InvestmentHandler) ChangeStatus(c *fiber.Ctx) error {
	user := middleware.CallerFromCtx(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	rec, err := h.investmentService.ChangeStatus(c.Context(), c.Params("id"), domain.Status(req.Status), req.Comment, user)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatusValue) {
			return response.BadRequest(c, "Status must be one of Approved, Rejected, Pending")
		}
		return h.mapError(c, err, "Failed to change request status")
	}

	return response.Success(c, "Request status updated", rec)
}

// History returns the audited status transitions of a request
// @Summary Request status history
// @Description List the recorded status transitions of a request (Admin only)
// @Tags Investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /investments/{id}/history [get]
func (h *InvestmentHandler) History(c *fiber.Ctx) error {
	entries, err := h.investmentService.History(c.Context(), c.Params("id"))
	if err != nil {
		return response.InternalServerError(c, "Failed to get request history")
	}

	return response.Success(c, "Request history retrieved", entries)
}

func (h *InvestmentHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrInvestmentNotFound):
		return response.NotFound(c, "Investment request not found")
	case errors.Is(err, services.ErrNotOwner):
		return response.Forbidden(c, "Only the requester or an admin may modify this request")
	case errors.Is(err, services.ErrAdminRequired):
		return response.Forbidden(c, "Admin role required")
	case domain.IsUpstreamError(err):
		return response.BadGateway(c, "Record store unavailable")
	default:
		return response.InternalServerError(c, fallback)
	}
}
