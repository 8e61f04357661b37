package specification

import (
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// WithDocumentContext keeps only turns that introduced a document
type WithDocumentContext struct{}

func (s WithDocumentContext) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_context IS NOT NULL AND document_context <> ''")
}
