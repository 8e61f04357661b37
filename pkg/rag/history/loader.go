package history

import (
	"context"

	"genai-chatbot-be/internal/constant"
	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/pkg/logger"
	"genai-chatbot-be/pkg/store"
)

// Loader fetches the recent conversation window for prompt assembly.
type Loader struct {
	store  store.ContextStore
	logger logger.ILogger
	window int
}

func NewLoader(s store.ContextStore, l logger.ILogger) *Loader {
	return &Loader{
		store:  s,
		logger: l,
		window: constant.HistoryWindow,
	}
}

// LoadRecentTurns returns the newest turns of the session, oldest first.
// Store failures degrade to an empty history.
func (l *Loader) LoadRecentTurns(ctx context.Context, sessionID string) []*entity.ChatTurn {
	turns, err := l.store.GetRecentTurns(ctx, sessionID, l.window)
	if err != nil {
		l.logger.Warn("HISTORY", "Failed to load conversation history", map[string]interface{}{
			"session_id": sessionID,
			"store":      l.store.Name(),
			"error":      err.Error(),
		})
		return []*entity.ChatTurn{}
	}

	if len(turns) > l.window {
		turns = turns[len(turns)-l.window:]
	}
	return turns
}
