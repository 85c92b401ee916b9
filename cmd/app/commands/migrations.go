package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/tillware/posd/internal/app"
	"github.com/tillware/posd/internal/config"
)

// RunMigrations executes database migrations based on the configured driver.
// Determines migration path from DBDriver (sqlite3 or postgres) and applies all
// pending migrations. Returns nil if no migrations to apply.
func RunMigrations() error {
	cfg := config.Load()

	// Create container just for logger
	container := app.NewContainer(cfg)
	logger := container.Logger()

	logger.Info("running database migrations",
		slog.String("driver", cfg.DBDriver),
	)

	migrationsPath, databaseURL := migrationTargets(cfg.DBDriver, cfg.DBConnectionString)

	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrationTargets maps the configured driver to the migration source path and
// the database URL the migrate driver expects. The sqlite connection string is
// a plain DSN, so it needs the scheme prefix.
func migrationTargets(driver, connectionString string) (string, string) {
	if driver == "postgres" {
		return "file://migrations/postgresql", connectionString
	}
	return "file://migrations/sqlite", "sqlite3://" + connectionString
}
