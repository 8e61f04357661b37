package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId       string    `gorm:"type:varchar(255);not null;index:idx_chats_session_created,priority:1"`
	UserMessage     string    `gorm:"type:text;not null"`
	BotResponse     string    `gorm:"type:text;not null"`
	DocumentContext *string   `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"column:timestamp;not null;index:idx_chats_session_created,priority:2"`
}

func (ChatTurn) TableName() string {
	return "chats"
}
