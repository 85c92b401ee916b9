// Package testutil provides testing utilities for database-backed tests.
//
// Database Setup:
//
//	db := testutil.SetupSqliteDB(t)
//	defer testutil.TeardownDB(t, db)
//
// Each call creates a fresh sqlite database file under t.TempDir() and applies
// all migrations, so tests need no external daemon and cannot see each other's
// data.
//
// Migration Path:
//
// Migrations are discovered by walking up from the current working directory
// until a "migrations/sqlite" directory is found.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// SetupSqliteDB creates a new sqlite database in a test-scoped temp directory
// and runs all migrations against it.
func SetupSqliteDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err, "failed to open sqlite database")

	err = db.Ping()
	require.NoError(t, err, "failed to ping sqlite database")

	runSqliteMigrations(t, db)

	return db
}

// TeardownDB closes the database connection.
func TeardownDB(t *testing.T, db *sql.DB) {
	t.Helper()

	err := db.Close()
	require.NoError(t, err, "failed to close database")
}

// runSqliteMigrations applies all sqlite migrations to the given database.
func runSqliteMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	require.NoError(t, err, "failed to create sqlite migrate driver")

	migrationsPath := findMigrationsDir(t, "sqlite")

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "failed to run migrations")
	}
}

// findMigrationsDir walks up from the working directory until it finds
// migrations/<dbType>.
func findMigrationsDir(t *testing.T, dbType string) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		candidate := filepath.Join(dir, "migrations", dbType)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("migrations/%s directory not found walking up from working directory", dbType)
		}
		dir = parent
	}
}
