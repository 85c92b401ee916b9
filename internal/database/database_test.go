package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnect_Error(t *testing.T) {
	cfg := Config{
		Driver:             "invalid",
		ConnectionString:   "invalid",
		MaxOpenConnections: 10,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    time.Hour,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "sql: unknown driver")
}

func TestConnect_Sqlite(t *testing.T) {
	cfg := Config{
		Driver:             "sqlite3",
		ConnectionString:   "file:" + t.TempDir() + "/connect_test.db",
		MaxOpenConnections: 1,
		MaxIdleConnections: 1,
		ConnMaxLifetime:    time.Hour,
	}

	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)
	defer db.Close() //nolint:errcheck
}
