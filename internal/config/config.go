// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the terminal API server will bind to.
	ServerHost string
	// ServerPort is the port number the terminal API server will listen on.
	ServerPort int
	// ServerShutdownTimeout bounds the graceful shutdown of the HTTP servers.
	ServerShutdownTimeout time.Duration

	// DBDriver is the database driver to use (e.g., "sqlite3", "postgres").
	DBDriver string
	// DBConnectionString is the connection string for the local store.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// RemoteBaseURL is the base URL of the remote system of record.
	RemoteBaseURL string
	// RemoteAPIToken is forwarded as-is on remote calls. Token lifecycle is
	// managed outside this daemon.
	RemoteAPIToken string
	// RemoteTimeout bounds every remote call (submission, pricing fetch).
	RemoteTimeout time.Duration
	// LocationID identifies this terminal's location on sale submissions.
	LocationID string

	// SaleSyncInterval is how often the sync engine drains the sale queue.
	SaleSyncInterval time.Duration
	// SaleSyncBatchSize is the maximum number of queued sales drained per pass.
	SaleSyncBatchSize int
	// SaleSyncSubmitsPerSecond throttles outbound submissions during a drain.
	// Zero means unlimited.
	SaleSyncSubmitsPerSecond int

	// PricingSyncInterval is how often the pricing snapshot is refreshed.
	PricingSyncInterval time.Duration

	// PrintBridgeURL is the endpoint of the local print bridge.
	PrintBridgeURL string
	// PrintTimeout bounds every print dispatch call.
	PrintTimeout time.Duration
	// PrintMaxRetries is the automatic retry budget per print job.
	PrintMaxRetries int
	// PrintMaxCopies caps the number of copies per print request.
	PrintMaxCopies int
	// PrintHistorySize is the number of jobs kept in the in-memory history ring.
	PrintHistorySize int
	// PrintPersistedHistorySize is the subset of history persisted across restarts.
	PrintPersistedHistorySize int
	// PrinterAssignmentsPath is the operator-maintained role-to-device YAML file.
	PrinterAssignmentsPath string
	// PrintSpoolDir is where rendered page-based artifacts are written.
	PrintSpoolDir string

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:            env.GetString("SERVER_HOST", "127.0.0.1"),
		ServerPort:            env.GetInt("SERVER_PORT", 8080),
		ServerShutdownTimeout: env.GetDuration("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),

		// Database configuration
		DBDriver:             env.GetString("DB_DRIVER", "sqlite3"),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", "file:posd.db?_journal_mode=WAL&_busy_timeout=5000"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 1),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 1),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Remote system of record
		RemoteBaseURL:  env.GetString("REMOTE_BASE_URL", "http://localhost:9090"),
		RemoteAPIToken: env.GetString("REMOTE_API_TOKEN", ""),
		RemoteTimeout:  env.GetDuration("REMOTE_TIMEOUT_SECONDS", 15, time.Second),
		LocationID:     env.GetString("LOCATION_ID", ""),

		// Sale queue sync
		SaleSyncInterval:         env.GetDuration("SALE_SYNC_INTERVAL_SECONDS", 60, time.Second),
		SaleSyncBatchSize:        env.GetInt("SALE_SYNC_BATCH_SIZE", 50),
		SaleSyncSubmitsPerSecond: env.GetInt("SALE_SYNC_SUBMITS_PER_SECOND", 5),

		// Pricing sync
		PricingSyncInterval: env.GetDuration("PRICING_SYNC_INTERVAL_SECONDS", 300, time.Second),

		// Printing
		PrintBridgeURL:            env.GetString("PRINT_BRIDGE_URL", "http://localhost:9100"),
		PrintTimeout:              env.GetDuration("PRINT_TIMEOUT_SECONDS", 10, time.Second),
		PrintMaxRetries:           env.GetInt("PRINT_MAX_RETRIES", 2),
		PrintMaxCopies:            env.GetInt("PRINT_MAX_COPIES", 5),
		PrintHistorySize:          env.GetInt("PRINT_HISTORY_SIZE", 50),
		PrintPersistedHistorySize: env.GetInt("PRINT_PERSISTED_HISTORY_SIZE", 10),
		PrinterAssignmentsPath:    env.GetString("PRINTER_ASSIGNMENTS_PATH", "printers.yml"),
		PrintSpoolDir:             env.GetString("PRINT_SPOOL_DIR", os.TempDir()),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", true),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", "tauri://localhost"),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "posd"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
