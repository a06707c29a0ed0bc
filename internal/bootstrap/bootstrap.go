// Package bootstrap initializes shared infrastructure before the bot starts.
package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"freelancebot/internal/config"
	"freelancebot/internal/database"
	"freelancebot/internal/logger"
)

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, connects to the database, and applies migrations.
func Run(cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	if err := database.RunMigrations(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	return &Result{DB: db}, nil
}
