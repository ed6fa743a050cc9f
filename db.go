package main

import (
	"fmt"
	"log/slog"

	"budgeter/pkg/config"
	"budgeter/pkg/database"

	"gorm.io/gorm"
)

// initDB opens the configured database and, unless disabled with
// DATABASE_AUTO_MIGRATE=false, brings the schema up to date.
func initDB(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.AutoMigrate {
		return db, nil
	}
	if err := database.Migrate(db, cfg.DSN); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema up to date", "driver", database.Driver(cfg.DSN))
	return db, nil
}
