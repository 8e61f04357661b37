package session

import (
	"context"
	"strings"

	"genai-chatbot-be/internal/pkg/logger"
	"genai-chatbot-be/pkg/store"

	"github.com/google/uuid"
)

// Manager resolves session identity and which document context a turn uses.
type Manager struct {
	store  store.ContextStore
	logger logger.ILogger
}

func NewManager(s store.ContextStore, l logger.ILogger) *Manager {
	return &Manager{
		store:  s,
		logger: l,
	}
}

// ResolveSessionID keeps a caller supplied id, otherwise mints a new one.
func (m *Manager) ResolveSessionID(requested string) (id string, isNew bool) {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested, false
	}
	return uuid.New().String(), true
}

// ResolveDocumentContext picks the document text for this turn. Freshly
// extracted text wins and is returned for persistence; otherwise the latest
// stored context of the session is reused and nothing new is persisted.
// New sessions have nothing stored, so the lookup is skipped.
func (m *Manager) ResolveDocumentContext(ctx context.Context, sessionID string, isNew bool, extracted string) (text string, persist *string) {
	if extracted != "" {
		return extracted, &extracted
	}
	if isNew {
		return "", nil
	}

	latest, err := m.store.GetLatestDocumentContext(ctx, sessionID)
	if err != nil {
		m.logger.Warn("SESSION", "Failed to load stored document context", map[string]interface{}{
			"session_id": sessionID,
			"store":      m.store.Name(),
			"error":      err.Error(),
		})
		return "", nil
	}
	if latest == nil {
		return "", nil
	}
	return *latest, nil
}
