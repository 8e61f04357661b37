package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// GenerateRequest is a single question, optionally with an uploaded file.
// Sampling defaults are filled in by the HTTP layer before validation.
type GenerateRequest struct {
	Prompt      string        `json:"prompt" form:"prompt" validate:"required"`
	SessionId   string        `json:"session_id" form:"session_id" validate:"max=255"`
	Temperature float64       `json:"temperature" form:"temperature" validate:"gte=0,lte=1"`
	TopP        float64       `json:"top_p" form:"top_p" validate:"gte=0,lte=1"`
	TopK        int           `json:"top_k" form:"top_k" validate:"gte=1,lte=100"`
	File        *UploadedFile `json:"-" form:"-"`
}

// UploadedFile is the request-scoped content of context_file. The reader is
// owned by the caller.
type UploadedFile struct {
	Filename string
	Content  io.Reader
}

type GenerateResponse struct {
	Response            string                 `json:"response"`
	SessionId           string                 `json:"session_id"`
	Persisted           bool                   `json:"persisted"`
	DocumentContextUsed bool                   `json:"document_context_used"`
	Model               string                 `json:"model,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

type ChatTurnResponse struct {
	Id              uuid.UUID `json:"id"`
	UserMessage     string    `json:"user_message"`
	BotResponse     string    `json:"bot_response"`
	Timestamp       time.Time `json:"timestamp"`
	DocumentContext *string   `json:"document_context"`
}

type HealthResponse struct {
	Store    string `json:"store"`
	Provider string `json:"provider"`
}

// TurnRecordedMessage travels over the in-process bus after a turn is stored.
// It never carries the assembled prompt.
type TurnRecordedMessage struct {
	TurnId              uuid.UUID              `json:"turn_id"`
	SessionId           string                 `json:"session_id"`
	Provider            string                 `json:"provider"`
	Model               string                 `json:"model"`
	DurationMs          int64                  `json:"duration_ms"`
	DocumentContextUsed bool                   `json:"document_context_used"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
	OccurredAt          time.Time              `json:"occurred_at"`
}
