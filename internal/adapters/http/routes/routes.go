package routes

import (
	"time"

	"capex-approval/internal/adapters/graph"
	"capex-approval/internal/adapters/http/handlers"
	"capex-approval/internal/adapters/http/middleware"
	"capex-approval/internal/adapters/persistence/repositories"
	"capex-approval/internal/config"
	"capex-approval/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. auditDB may be nil
// when the audit trail is disabled.
func Setup(app *fiber.App, auditDB *gorm.DB, cfg *config.Config) {
	// Graph clients
	azureClient := graph.NewAzureADClient(cfg.Azure, cfg.UpstreamTimeout)
	recordStore := graph.NewSharePointStore(cfg.SharePoint, azureClient, cfg.UpstreamTimeout)

	// Audit trail (optional)
	var audit services.AuditRecorder
	if auditDB != nil {
		audit = repositories.NewAuditRepository(auditDB)
	}

	// Services
	authService := services.NewAuthService(azureClient, cfg)
	investmentService := services.NewInvestmentService(recordStore, audit)
	dashboardService := services.NewDashboardService(recordStore)

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	investmentHandler := handlers.NewInvestmentHandler(investmentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	api := app.Group("/api")

	requireAuth := middleware.AuthMiddleware(authService)

	// Auth routes
	auth := api.Group("/auth")
	auth.Get("/login-url", authHandler.LoginURL)
	auth.Post("/login", middleware.AuthRateLimiter(), middleware.NoCacheHeaders(), authHandler.Login)
	auth.Post("/refresh", middleware.NoCacheHeaders(), authHandler.Refresh)
	auth.Get("/me", requireAuth, authHandler.Me)
	if cfg.IsDev() {
		auth.Post("/temp-login", middleware.AuthRateLimiter(), middleware.NoCacheHeaders(), authHandler.TempLogin)
	}

	// Investment request routes
	investments := api.Group("/investments", requireAuth)
	investments.Get("/", investmentHandler.List)
	investments.Post("/", investmentHandler.Create)
	investments.Get("/:id", investmentHandler.GetByID)
	investments.Put("/:id", investmentHandler.Update)
	investments.Delete("/:id", investmentHandler.Delete)
	investments.Patch("/:id/status", middleware.AdminOnly(), investmentHandler.ChangeStatus)
	investments.Get("/:id/history", middleware.AdminOnly(), investmentHandler.History)

	// Dashboard routes
	dashboard := api.Group("/dashboard", requireAuth, middleware.PrivateCacheHeaders(30*time.Second))
	dashboard.Get("/stats", dashboardHandler.Stats)
	dashboard.Get("/recent", dashboardHandler.Recent)
	dashboard.Get("/user-stats", middleware.AdminOnly(), dashboardHandler.UserStats)

	// Development-only mock surface backed by an in-memory store
	if cfg.IsDev() {
		setupMockRoutes(api, authService, audit)
	}
}

// setupMockRoutes mirrors the investment and dashboard routes over an
// in-memory store so the frontend can run without SharePoint access
func setupMockRoutes(api fiber.Router, authService *services.AuthService, audit services.AuditRecorder) {
	mockStore := services.NewMockStore()
	investmentService := services.NewInvestmentService(mockStore, audit)
	dashboardService := services.NewDashboardService(mockStore)

	investmentHandler := handlers.NewInvestmentHandler(investmentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	requireAuth := middleware.AuthMiddleware(authService)

	mock := api.Group("/mock", requireAuth)

	mock.Get("/investments", investmentHandler.List)
	mock.Post("/investments", investmentHandler.Create)
	mock.Get("/investments/:id", investmentHandler.GetByID)
	mock.Put("/investments/:id", investmentHandler.Update)
	mock.Delete("/investments/:id", investmentHandler.Delete)
	mock.Patch("/investments/:id/status", middleware.AdminOnly(), investmentHandler.ChangeStatus)
	mock.Get("/investments/:id/history", middleware.AdminOnly(), investmentHandler.History)

	mock.Get("/dashboard/stats", dashboardHandler.Stats)
	mock.Get("/dashboard/recent", dashboardHandler.Recent)
	mock.Get("/dashboard/user-stats", middleware.AdminOnly(), dashboardHandler.UserStats)
}
