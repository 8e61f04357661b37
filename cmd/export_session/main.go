package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"genai-chatbot-be/internal/bootstrap"
	"genai-chatbot-be/internal/config"

	"gopkg.in/yaml.v3"
)

// transcript is the YAML shape of an exported session.
type transcript struct {
	SessionID  string    `yaml:"session_id"`
	ExportedAt time.Time `yaml:"exported_at"`
	Turns      []turn    `yaml:"turns"`
}

type turn struct {
	Timestamp       time.Time `yaml:"timestamp"`
	User            string    `yaml:"user"`
	Assistant       string    `yaml:"assistant"`
	DocumentContext string    `yaml:"document_context,omitempty"`
}

func main() {
	out := flag.String("o", "", "write the transcript to this file instead of stdout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: go run cmd/export_session/main.go [-o transcript.yaml] <session_id>")
		os.Exit(1)
	}
	sessionID := flag.Arg(0)

	cfg := config.Load()
	contextStore := bootstrap.NewContextStoreFromConfig(bootstrap.OpenDatabase(cfg), cfg)
	defer contextStore.Close()

	turns, err := contextStore.GetTurns(context.Background(), sessionID)
	if err != nil {
		log.Fatalln("ERROR:", err)
	}
	if len(turns) == 0 {
		log.Fatalf("ERROR: session %s has no turns in store %s", sessionID, contextStore.Name())
	}

	doc := transcript{
		SessionID:  sessionID,
		ExportedAt: time.Now().UTC(),
		Turns:      make([]turn, 0, len(turns)),
	}
	for _, t := range turns {
		entry := turn{
			Timestamp: t.CreatedAt,
			User:      t.UserMessage,
			Assistant: t.BotResponse,
		}
		if t.DocumentContext != nil {
			entry.DocumentContext = *t.DocumentContext
		}
		doc.Turns = append(doc.Turns, entry)
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		log.Fatalln("ERROR:", err)
	}

	if *out == "" {
		fmt.Print(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalln("ERROR:", err)
	}
	log.Printf("Exported %d turns to %s", len(doc.Turns), *out)
}
