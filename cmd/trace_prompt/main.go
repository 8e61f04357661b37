package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"genai-chatbot-be/internal/bootstrap"
	"genai-chatbot-be/internal/config"
	"genai-chatbot-be/internal/pkg/logger"
	"genai-chatbot-be/pkg/rag/history"
	"genai-chatbot-be/pkg/rag/prompt"
	"genai-chatbot-be/pkg/rag/session"

	"github.com/fatih/color"
)

/*
PROMPT TRACE

Prints the exact prompt the service would send for a follow-up question in an
existing session: persona, the recent history window, the reused document
context and the closing instruction. Nothing is sent to the model and nothing
is stored.

USAGE:
  go run cmd/trace_prompt/main.go <session_id> "<question>"
*/

func main() {
	if len(os.Args) < 3 {
		fmt.Println(`Usage: go run cmd/trace_prompt/main.go <session_id> "<question>"`)
		os.Exit(1)
	}
	sessionID := strings.TrimSpace(os.Args[1])
	query := strings.TrimSpace(strings.Join(os.Args[2:], " "))

	cfg := config.Load()
	sysLogger := logger.NewNopLogger()

	contextStore := bootstrap.NewContextStoreFromConfig(bootstrap.OpenDatabase(cfg), cfg)
	defer contextStore.Close()

	ctx := context.Background()
	documentText, _ := session.NewManager(contextStore, sysLogger).ResolveDocumentContext(ctx, sessionID, false, "")
	turns := history.NewLoader(contextStore, sysLogger).LoadRecentTurns(ctx, sessionID)

	color.Cyan("Session: %s (store: %s)", sessionID, contextStore.Name())
	color.Yellow("History turns in window: %d", len(turns))
	if documentText != "" {
		color.Green("Document context: %d chars", len([]rune(documentText)))
	} else {
		color.Red("Document context: none")
	}

	fmt.Println()
	color.New(color.Bold).Println("----- PROMPT -----")
	fmt.Println(prompt.Build(query, documentText, turns))
	color.New(color.Bold).Println("----- END -----")
}
