package entity

import (
	"time"

	"github.com/google/uuid"
)

type GenerationLog struct {
	Id                  uuid.UUID
	TurnId              uuid.UUID
	SessionId           string
	Provider            string
	Model               string
	DurationMs          int64
	DocumentContextUsed bool
	Metadata            map[string]interface{}
	CreatedAt           time.Time
}
