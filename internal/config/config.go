package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevSessionSecret is the fallback signing key used in dev mode when
// SESSION_SECRET is unset. It is a configuration error in prod mode.
const DevSessionSecret = "temp-secret-key-for-development-only-please-change-in-production"

// Config holds all configuration for the application
type Config struct {
	AppMode    string
	Port       string
	Azure      AzureConfig
	SharePoint SharePointConfig
	Session    SessionConfig
	Audit      AuditConfig
	Reminder   ReminderConfig

	// Timeout for every outbound call to Microsoft Graph / Azure AD
	UpstreamTimeout time.Duration
}

// AzureConfig holds Azure AD (identity provider) configuration
type AzureConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	AdminGroupID string
}

// SharePointConfig holds record store coordinates
type SharePointConfig struct {
	SiteID string
	ListID string
}

// SessionConfig holds session token configuration
type SessionConfig struct {
	Secret      string
	LifetimeHrs int
}

// AuditConfig holds the optional local audit database configuration.
// An empty host disables the status-change audit trail.
type AuditConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Enabled  bool
}

// ReminderConfig holds the pending-request reminder job configuration
type ReminderConfig struct {
	Enabled      bool
	Schedule     string
	StaleAfterDy int
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	timeoutSecs, _ := strconv.Atoi(getEnv("UPSTREAM_TIMEOUT_SECONDS", "30"))

	config := &Config{
		AppMode: appMode,
		Port:    getEnv("PORT", "5000"),
		Azure: AzureConfig{
			TenantID:     getEnv("AZURE_TENANT_ID", ""),
			ClientID:     getEnv("AZURE_CLIENT_ID", ""),
			ClientSecret: getEnv("AZURE_CLIENT_SECRET", ""),
			AdminGroupID: getEnv("ADMIN_GROUP_ID", ""),
		},
		SharePoint: SharePointConfig{
			SiteID: getEnv("SHAREPOINT_SITE_ID", ""),
			ListID: getEnv("SHAREPOINT_LIST_ID", ""),
		},
		Session:         loadSessionConfig(appMode),
		Audit:           loadAuditConfig(),
		Reminder:        loadReminderConfig(),
		UpstreamTimeout: time.Duration(timeoutSecs) * time.Second,
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadSessionConfig loads session token config based on mode
func loadSessionConfig(mode string) SessionConfig {
	secret := getEnv("SESSION_SECRET", "")
	if secret == "" && mode == "dev" {
		log.Println("⚠️ SESSION_SECRET not set, using development fallback key")
		secret = DevSessionSecret
	}

	lifetime, _ := strconv.Atoi(getEnv("SESSION_LIFETIME_HOURS", "24"))

	return SessionConfig{
		Secret:      secret,
		LifetimeHrs: lifetime,
	}
}

// loadAuditConfig loads the optional audit database config
func loadAuditConfig() AuditConfig {
	host := getEnv("AUDIT_DB_HOST", "")

	return AuditConfig{
		Host:     host,
		Port:     getEnv("AUDIT_DB_PORT", "3306"),
		User:     getEnv("AUDIT_DB_USER", "root"),
		Password: getEnv("AUDIT_DB_PASS", ""),
		DBName:   getEnv("AUDIT_DB_NAME", "capex_audit"),
		Enabled:  host != "",
	}
}

// loadReminderConfig loads the reminder job config
func loadReminderConfig() ReminderConfig {
	enabled, _ := strconv.ParseBool(getEnv("REMINDER_ENABLED", "true"))
	staleDays, _ := strconv.Atoi(getEnv("REMINDER_STALE_DAYS", "3"))

	return ReminderConfig{
		Enabled:      enabled,
		Schedule:     getEnv("REMINDER_SCHEDULE", "30 8 * * *"),
		StaleAfterDy: staleDays,
	}
}

// validate rejects configurations that must never reach production
func (c *Config) validate() error {
	if c.IsProd() {
		if c.Session.Secret == "" || c.Session.Secret == DevSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be set to a non-default value in prod mode")
		}
		if c.Azure.TenantID == "" || c.Azure.ClientID == "" || c.Azure.ClientSecret == "" {
			return fmt.Errorf("AZURE_TENANT_ID, AZURE_CLIENT_ID and AZURE_CLIENT_SECRET are required in prod mode")
		}
		if c.SharePoint.SiteID == "" || c.SharePoint.ListID == "" {
			return fmt.Errorf("SHAREPOINT_SITE_ID and SHAREPOINT_LIST_ID are required in prod mode")
		}
	}
	if c.Session.LifetimeHrs <= 0 {
		return fmt.Errorf("SESSION_LIFETIME_HOURS must be positive")
	}
	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" && c.IsDev() {
		return "*"
	}
	return origins
}
