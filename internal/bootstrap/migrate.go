package bootstrap

import (
	"log"

	"genai-chatbot-be/internal/config"
	"genai-chatbot-be/internal/model"
	"genai-chatbot-be/pkg/database"

	"gorm.io/gorm"
)

// Models lists every table owned by the service.
func Models() []interface{} {
	return []interface{}{
		&model.ChatTurn{},
		&model.GenerationLog{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// OpenDatabase connects to the configured database and migrates it when
// DB_AUTO_MIGRATE is set. It returns nil when no database is usable.
func OpenDatabase(cfg *config.Config) *gorm.DB {
	if cfg.Database.Connection == "" {
		return nil
	}

	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Printf("[WARN] Unable to connect to database: %v", err)
		return nil
	}

	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			log.Printf("[WARN] AutoMigrate failed: %v", err)
		}
	}
	return db
}
