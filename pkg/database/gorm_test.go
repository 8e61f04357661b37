package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGormDB_SQLite(t *testing.T) {
	db, err := NewGormDB(DriverSQLite, filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewGormDB_Errors(t *testing.T) {
	_, err := NewGormDB("mysql", "x")
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = NewGormDB(DriverSQLite, "")
	assert.Error(t, err)
}
