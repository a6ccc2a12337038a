package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"capex-approval/internal/adapters/graph"
	"capex-approval/internal/adapters/http/middleware"
	"capex-approval/internal/adapters/http/routes"
	"capex-approval/internal/adapters/persistence/repositories"
	"capex-approval/internal/config"
	"capex-approval/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "capex-approval/docs" // Swagger docs
)

// @title CapEx Approval API
// @version 1.0
// @description Capital expenditure approval workflow API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email it-support@company.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to the optional audit database
	auditDB, err := config.ConnectAuditDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to audit database: %v", err)
	}
	if auditDB != nil {
		if err := repositories.Migrate(auditDB); err != nil {
			log.Fatalf("❌ Failed to migrate audit database: %v", err)
		}
		log.Println("✅ Audit database migration completed")
	}

	// Daily pending-request reminder scan
	azureClient := graph.NewAzureADClient(cfg.Azure, cfg.UpstreamTimeout)
	recordStore := graph.NewSharePointStore(cfg.SharePoint, azureClient, cfg.UpstreamTimeout)
	reminderService := services.NewReminderService(recordStore, cfg)
	if err := reminderService.Start(); err != nil {
		log.Fatalf("❌ Failed to start reminder scheduler: %v", err)
	}
	defer reminderService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CapEx Approval API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass audit db and cfg for dependency injection)
	routes.Setup(app, auditDB, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
