package server

import (
	"context"

	"github.com/CustomGPTer/RAMS-Generator/internal/bootstrap"
	"github.com/CustomGPTer/RAMS-Generator/internal/config"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Initialize Fiber App
	app := fiber.New(fiber.Config{
		AppName:               "RAMS Generator",
		BodyLimit:             1 * 1024 * 1024, // 1MB, answers are text only
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          serverutils.ErrorHandler(container.Logger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept",
		AllowMethods:  "GET, HEAD, POST, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type, Content-Disposition",
	}))
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.container.Logger.Info("SERVER", "Server is running", map[string]interface{}{
			"addr": "http://localhost:" + s.cfg.App.Port,
		})
		errCh <- s.app.Listen(":" + s.cfg.App.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.app.Shutdown()
	}
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.HealthController.RegisterRoutes(app)
	c.RamsController.RegisterLegacyRoutes(app)

	api := app.Group("/api")
	c.RamsController.RegisterRoutes(api)
}
