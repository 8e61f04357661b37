package server

import (
	"log"

	"genai-chatbot-be/internal/bootstrap"
	"genai-chatbot-be/internal/config"
	"genai-chatbot-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.Upload.MaxBytes,
		ErrorHandler: serverutils.FiberErrorHandler,
	})

	registerMiddleware(app, cfg)

	// Routes
	registerRoutes(app, container)

	app.Use(serverutils.NotFoundHandler)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

// registerMiddleware installs the stack shared by every route. A panic in a
// handler is answered with a 500 instead of killing the process.
func registerMiddleware(app *fiber.App, cfg *config.Config) {
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, OPTIONS",
	}))

	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.ChatbotController.RegisterRoutes(api)
}
