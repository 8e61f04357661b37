package implementation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/model"
	"genai-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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

func TestChatTurnRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewChatTurnRepository(newTestDB(t))

	doc := "manual text"
	turn := &entity.ChatTurn{
		Id:              uuid.New(),
		SessionId:       "s1",
		UserMessage:     "hello",
		BotResponse:     "hi",
		DocumentContext: &doc,
		CreatedAt:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, turn))
	require.NoError(t, repo.Create(ctx, &entity.ChatTurn{Id: uuid.New(), SessionId: "s2", UserMessage: "x", BotResponse: "y", CreatedAt: time.Now().UTC()}))

	found, err := repo.FindOne(ctx, specification.ByID{ID: turn.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "hello", found.UserMessage)
	assert.True(t, found.HasDocumentContext())
	assert.True(t, turn.CreatedAt.Equal(found.CreatedAt))

	missing, err := repo.FindOne(ctx, specification.ByID{ID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, missing)

	inSession, err := repo.FindAll(ctx, specification.BySessionID{SessionID: "s1"})
	require.NoError(t, err)
	assert.Len(t, inSession, 1)

	withDoc, err := repo.FindAll(ctx, specification.WithDocumentContext{})
	require.NoError(t, err)
	require.Len(t, withDoc, 1)
	assert.Equal(t, turn.Id, withDoc[0].Id)

	ids, err := repo.FindDistinctSessionIds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)
}

func TestGenerationLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGenerationLogRepository(newTestDB(t))

	entry := &entity.GenerationLog{
		Id:         uuid.New(),
		TurnId:     uuid.New(),
		SessionId:  "s1",
		Provider:   "gemini",
		Model:      "gemini-2.5-flash",
		DurationMs: 420,
		Metadata:   map[string]interface{}{"finish_reason": "STOP"},
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, entry))

	logs, err := repo.FindAll(ctx, specification.BySessionID{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entry.TurnId, logs[0].TurnId)
	assert.Equal(t, int64(420), logs[0].DurationMs)
	assert.Equal(t, "STOP", logs[0].Metadata["finish_reason"])
}
