package store

import (
	"context"
	"fmt"
	"testing"

	"genai-chatbot-be/internal/model"
	"genai-chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.ChatTurn{}, &model.GenerationLog{}))
	return db
}

func TestGormStore(t *testing.T) {
	db := newSQLiteDB(t)
	s := NewGormStore(unitofwork.NewRepositoryFactory(db), nil)

	runContextStoreSuite(t, s)
}

func TestNewContextStore_Gorm(t *testing.T) {
	db := newSQLiteDB(t)

	s, err := NewContextStore(context.Background(), Options{Driver: DriverGorm, DB: db})
	require.NoError(t, err)
	require.Equal(t, DriverGorm, s.Name())
}
