package config

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectAuditDatabase establishes the connection to the optional MySQL
// audit database. Returns (nil, nil) when the audit trail is disabled.
func ConnectAuditDatabase(cfg *Config) (*gorm.DB, error) {
	if !cfg.Audit.Enabled {
		log.Println("ℹ️ Audit database not configured, status-change history disabled")
		return nil, nil
	}

	dsn := buildDSN(cfg.Audit)

	var gormLogger logger.Interface
	if cfg.IsDev() {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	log.Printf("✅ Audit database connected [%s:%s/%s]",
		cfg.Audit.Host,
		cfg.Audit.Port,
		cfg.Audit.DBName,
	)

	return db, nil
}

// buildDSN returns the audit database connection string
func buildDSN(a AuditConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		a.User,
		a.Password,
		a.Host,
		a.Port,
		a.DBName,
	)
}
