package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurn is one persisted exchange of a session. Turns are never edited.
type ChatTurn struct {
	Id              uuid.UUID
	SessionId       string
	UserMessage     string
	BotResponse     string
	DocumentContext *string
	CreatedAt       time.Time
}

// HasDocumentContext reports whether the turn introduced a document.
func (t *ChatTurn) HasDocumentContext() bool {
	return t.DocumentContext != nil && *t.DocumentContext != ""
}
