package server

import (
	"errors"
	"log/slog"

	"proconnect/internal/middleware"
	"proconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondServiceError writes the error envelope for an error returned by a
// service. Server-side failures are logged with their cause; the cause itself
// never reaches the client.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)

	code := models.CodeInternal
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	}

	middleware.RecordAppError(code, status)
	return models.RespondWithError(c, status, err)
}
