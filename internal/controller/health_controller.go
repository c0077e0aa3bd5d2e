package controller

import (
	"github.com/CustomGPTer/RAMS-Generator/internal/dto"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Ping(ctx *fiber.Ctx) error
}

type healthController struct {
	logger logger.ILogger
}

func NewHealthController(logger logger.ILogger) IHealthController {
	return &healthController{logger: logger}
}

// RegisterRoutes answers GET and HEAD on "/" for uptime monitors.
func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Ping)
}

func (c *healthController) Ping(ctx *fiber.Ctx) error {
	c.logger.Debug("HEALTH", "Health check ping received", nil)
	return ctx.JSON(dto.HealthResponse{Message: "RAMS Generator is running"})
}
