package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"genai-chatbot-be/internal/config"
	"genai-chatbot-be/internal/constant"
	"genai-chatbot-be/pkg/events"
	pktNats "genai-chatbot-be/pkg/nats"

	"github.com/fatih/color"
)

/*
TURN WATCHER

Tails chat.turn_recorded events from NATS JetStream while the server runs with
NATS_URL set. Prints one line per stored turn: session, provider, latency and
whether a document context was used.

USAGE:
  NATS_URL=nats://localhost:4222 go run cmd/watch_turns/main.go
*/

func main() {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe(ctx, constant.EventTurnRecorded, "", func(ctx context.Context, event events.Event) error {
		p := event.Payload()
		label := color.New(color.FgCyan).Sprintf("[%s]", event.Timestamp().Format("15:04:05"))
		ctxFlag := color.RedString("no-doc")
		if used, _ := p["document_context_used"].(bool); used {
			ctxFlag = color.GreenString("doc")
		}
		fmt.Printf("%s session=%v provider=%v model=%v %vms %s\n",
			label, p["session_id"], p["provider"], p["model"], p["duration_ms"], ctxFlag)
		return nil
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	color.Yellow("Watching %s ... (Ctrl+C to stop)", pktNats.Subject(constant.EventTurnRecorded))
	<-ctx.Done()
}
