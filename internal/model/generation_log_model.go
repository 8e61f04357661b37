package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GenerationLog struct {
	Id                  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TurnId              uuid.UUID      `gorm:"type:uuid;not null;index"`
	SessionId           string         `gorm:"type:varchar(255);not null;index"`
	Provider            string         `gorm:"type:varchar(50);not null"`
	Model               string         `gorm:"type:varchar(100)"`
	DurationMs          int64          `gorm:"not null;default:0"`
	DocumentContextUsed bool           `gorm:"not null;default:false"`
	Metadata            datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
}

func (GenerationLog) TableName() string {
	return "generation_logs"
}
