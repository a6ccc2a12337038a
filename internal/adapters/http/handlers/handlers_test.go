package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capex-approval/internal/adapters/http/middleware"
	"capex-approval/internal/config"
	"capex-approval/internal/core/services"
)

// envelope mirrors the standard response body
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testApp struct {
	app         *fiber.App
	authService *services.AuthService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		AppMode: "dev",
		Session: config.SessionConfig{
			Secret:      config.DevSessionSecret,
			LifetimeHrs: 24,
		},
	}

	authService := services.NewAuthService(nil, cfg)
	store := services.NewMockStore()
	investmentService := services.NewInvestmentService(store, nil)
	dashboardService := services.NewDashboardService(store)

	authHandler := NewAuthHandler(authService, cfg)
	investmentHandler := NewInvestmentHandler(investmentService)
	dashboardHandler := NewDashboardHandler(dashboardService)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	requireAuth := middleware.AuthMiddleware(authService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/temp-login", authHandler.TempLogin)
	auth.Get("/me", requireAuth, authHandler.Me)

	investments := api.Group("/investments", requireAuth)
	investments.Get("/", investmentHandler.List)
	investments.Post("/", investmentHandler.Create)
	investments.Get("/:id", investmentHandler.GetByID)
	investments.Put("/:id", investmentHandler.Update)
	investments.Delete("/:id", investmentHandler.Delete)
	investments.Patch("/:id/status", middleware.AdminOnly(), investmentHandler.ChangeStatus)
	investments.Get("/:id/history", middleware.AdminOnly(), investmentHandler.History)

	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.Get("/stats", dashboardHandler.Stats)
	dashboard.Get("/recent", dashboardHandler.Recent)
	dashboard.Get("/user-stats", dashboardHandler.UserStats)

	return &testApp{app: app, authService: authService}
}

func (ta *testApp) token(t *testing.T, email string) string {
	t.Helper()
	resp, err := ta.authService.TempLogin(email, "")
	require.NoError(t, err)
	return resp.Token
}

func (ta *testApp) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp, &env
}

func TestInvestmentRoutesRequireAuth(t *testing.T) {
	ta := newTestApp(t)

	resp, _ := ta.request(t, "GET", "/api/investments/", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = ta.request(t, "GET", "/api/investments/", "garbage-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTempLoginAndMe(t *testing.T) {
	ta := newTestApp(t)

	resp, env := ta.request(t, "POST", "/api/auth/temp-login", "", fiber.Map{"email": "admin@company.com"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var login struct {
		Token string `json:"token"`
		User  struct {
			Email   string `json:"email"`
			IsAdmin bool   `json:"isAdmin"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.True(t, login.User.IsAdmin)

	resp, env = ta.request(t, "GET", "/api/auth/me", login.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "admin@company.com", me.Email)
}

func TestCreateAndGetInvestment(t *testing.T) {
	ta := newTestApp(t)
	token := ta.token(t, "user@company.com")

	resp, env := ta.request(t, "POST", "/api/investments/", token, fiber.Map{
		"title":   "Packing machine",
		"company": "SPS Alpha",
		"amount":  750000,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		RequestedBy string `json:"requestedBy"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Pending", created.Status)
	assert.Equal(t, "user@company.com", created.RequestedBy)

	resp, env = ta.request(t, "GET", "/api/investments/"+created.ID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fetched struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, "Packing machine", fetched.Title)
}

func TestCreateInvestmentRejectsEmptyTitle(t *testing.T) {
	ta := newTestApp(t)
	token := ta.token(t, "user@company.com")

	resp, env := ta.request(t, "POST", "/api/investments/", token, fiber.Map{"amount": 100})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestUpdateForbiddenForNonOwner(t *testing.T) {
	ta := newTestApp(t)
	// mock-004 belongs to admin@company.com; a plain user may not touch it
	token := ta.token(t, "user@company.com")

	resp, _ := ta.request(t, "PUT", "/api/investments/mock-004", token, fiber.Map{"title": "hijacked"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestStatusChangeAdminOnly(t *testing.T) {
	ta := newTestApp(t)

	userToken := ta.token(t, "user@company.com")
	resp, _ := ta.request(t, "PATCH", "/api/investments/mock-001/status", userToken, fiber.Map{"status": "Approved"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminToken := ta.token(t, "admin@company.com")
	resp, env := ta.request(t, "PATCH", "/api/investments/mock-001/status", adminToken, fiber.Map{
		"status":  "Approved",
		"comment": "Budget confirmed",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rec struct {
		Status       string `json:"status"`
		AdminComment string `json:"adminComment"`
		ProcessedBy  string `json:"processedBy"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "Approved", rec.Status)
	assert.Equal(t, "Budget confirmed", rec.AdminComment)
	assert.Equal(t, "admin@company.com", rec.ProcessedBy)
}

func TestStatusChangeRejectsUnknownValue(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.token(t, "admin@company.com")

	resp, _ := ta.request(t, "PATCH", "/api/investments/mock-001/status", adminToken, fiber.Map{"status": "Archived"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStatusChangeNotFound(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.token(t, "admin@company.com")

	resp, _ := ta.request(t, "PATCH", "/api/investments/no-such-id/status", adminToken, fiber.Map{"status": "Approved"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListWithFilters(t *testing.T) {
	ta := newTestApp(t)
	token := ta.token(t, "user@company.com")

	resp, env := ta.request(t, "GET", "/api/investments/?status=Pending&limit=2", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list struct {
		Items []json.RawMessage `json:"items"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 2, list.Count)
	assert.Len(t, list.Items, 2)
}

func TestDashboardStatsEndpoint(t *testing.T) {
	ta := newTestApp(t)
	token := ta.token(t, "user@company.com")

	resp, env := ta.request(t, "GET", "/api/dashboard/stats", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats struct {
		TotalCount int `json:"totalCount"`
		ByStatus   map[string]struct {
			Count int `json:"count"`
		} `json:"byStatus"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 6, stats.TotalCount)
	assert.Equal(t, 4, stats.ByStatus["Pending"].Count)
	assert.Equal(t, 1, stats.ByStatus["Approved"].Count)
}

func TestHistoryWithoutAuditReturnsEmptyList(t *testing.T) {
	ta := newTestApp(t)
	adminToken := ta.token(t, "admin@company.com")

	resp, env := ta.request(t, "GET", "/api/investments/mock-001/history", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Empty(t, entries)
}

func TestLoginRequiresCode(t *testing.T) {
	ta := newTestApp(t)

	resp, _ := ta.request(t, "POST", "/api/auth/login", "", fiber.Map{"code": ""})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
