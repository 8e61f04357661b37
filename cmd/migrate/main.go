package main

import (
	"log"

	"genai-chatbot-be/internal/bootstrap"
	"genai-chatbot-be/internal/config"
	"genai-chatbot-be/pkg/database"
)

func main() {
	cfg := config.Load()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("Running AutoMigrate for %d tables (%s)...", len(bootstrap.Models()), cfg.Database.Driver)

	if err := bootstrap.AutoMigrate(db); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Success: Database migration completed.")
}
