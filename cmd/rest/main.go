package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"genai-chatbot-be/internal/bootstrap"
	"genai-chatbot-be/internal/config"
	"genai-chatbot-be/internal/server"
	"genai-chatbot-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Telemetry.OtelEnabled, cfg.Telemetry.OtelEndpoint)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database (optional: the service runs without history when it is down)
	gormDB := bootstrap.OpenDatabase(cfg)

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer func() {
		if err := container.Close(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 6. Run Server until a signal arrives
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
