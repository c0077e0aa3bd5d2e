package serverutils

import (
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope with the matching status code.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return writeError(ctx, log, err)
	}
}

// ErrorHandler is installed on the fiber app for errors that escape the
// middleware chain, such as recovered panics.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		return writeError(ctx, log, err)
	}
}

func writeError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	code := apperror.StatusCode(err)
	message := apperror.Message(err)

	details := map[string]interface{}{
		"method": ctx.Method(),
		"path":   ctx.Path(),
		"status": code,
		"error":  err.Error(),
	}
	switch {
	case code >= fiber.StatusInternalServerError && code != fiber.StatusBadGateway:
		log.Error("HTTP", "Request failed", details)
		message = "internal server error"
	case code >= fiber.StatusInternalServerError:
		log.Error("HTTP", "Upstream generation failed", details)
	default:
		log.Warn("HTTP", "Request rejected", details)
	}

	// A failed handler may have set a binary content type already
	ctx.Response().Header.Del(fiber.HeaderContentDisposition)
	return ctx.Status(code).JSON(ErrorResponse(code, message))
}
