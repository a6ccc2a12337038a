package handlers

import (
	"errors"

	"capex-approval/internal/adapters/http/middleware"
	"capex-approval/internal/config"
	"capex-approval/internal/core/domain"
	"capex-approval/internal/core/services"
	"capex-approval/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// LoginRequest represents the code-exchange login request body
type LoginRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TempLoginRequest represents the development login request body
type TempLoginRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login exchanges an authorization code for a session
// @Summary Login with authorization code
// @Description Exchange an Azure AD authorization code for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Authorization code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Login(c.Context(), &services.LoginInput{
		Code:        req.Code,
		RedirectURI: req.RedirectURI,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCode):
			return response.BadRequest(c, "Authorization code and redirect URI are required")
		case domain.IsUpstreamError(err):
			return response.Unauthorized(c, "Authentication with identity provider failed")
		default:
			return response.InternalServerError(c, "Login failed")
		}
	}

	return response.Success(c, "Login successful", result)
}

// Refresh exchanges a refresh token for a new access token
// @Summary Refresh access token
// @Description Exchange a refresh token for a new identity-provider access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingRefresh):
			return response.BadRequest(c, "Refresh token is required")
		case domain.IsUpstreamError(err):
			return response.Unauthorized(c, "Refresh token rejected by identity provider")
		default:
			return response.InternalServerError(c, "Token refresh failed")
		}
	}

	return response.Success(c, "Token refreshed", result)
}

// LoginURL returns the identity provider authorize URL
// @Summary Get login URL
// @Description Build the Azure AD authorize URL for the given redirect URI
// @Tags Auth
// @Accept json
// @Produce json
// @Param redirect_uri query string true "Redirect URI"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/login-url [get]
func (h *AuthHandler) LoginURL(c *fiber.Ctx) error {
	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		return response.BadRequest(c, "redirect_uri query parameter is required")
	}

	return response.Success(c, "Login URL built", fiber.Map{
		"loginUrl": h.authService.LoginURL(redirectURI),
	})
}

// Me returns the authenticated caller's identity
// @Summary Current user
// @Description Return the identity carried by the session token
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CallerFromCtx(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	return response.Success(c, "User retrieved", user)
}

// TempLogin issues a development session without credentials
// @Summary Temporary login (dev only)
// @Description Issue a session token for one of the fixed development identities
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body TempLoginRequest true "Identity selector"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/temp-login [post]
func (h *AuthHandler) TempLogin(c *fiber.Ctx) error {
	var req TempLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.TempLogin(req.Email, req.Role)
	if err != nil {
		if errors.Is(err, services.ErrTempLoginClosed) {
			return response.Forbidden(c, "Temporary login is only available in development mode")
		}
		return response.InternalServerError(c, "Temporary login failed")
	}

	return response.Success(c, "Temporary login successful", result)
}
