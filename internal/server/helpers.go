package server

import (
	"log/slog"

	"github.com/Preeth02/aqi-using-ai/internal/middleware"
	"github.com/Preeth02/aqi-using-ai/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps application error codes to HTTP status codes.
func statusForError(err error) int {
	switch {
	case models.HasCode(err, models.CodeValidation):
		return fiber.StatusBadRequest
	case models.HasCode(err, models.CodeCodeExpired):
		return fiber.StatusBadRequest
	case models.HasCode(err, models.CodeConflict):
		return fiber.StatusConflict
	case models.HasCode(err, models.CodeNotFound):
		return fiber.StatusNotFound
	case models.HasCode(err, models.CodeUnauthorized):
		return fiber.StatusUnauthorized
	case models.HasCode(err, models.CodeInvalidCredentials):
		return fiber.StatusUnauthorized
	case models.HasCode(err, models.CodeUnverified):
		return fiber.StatusForbidden
	case models.HasCode(err, models.CodeUpstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError logs server-side failures and writes the uniform error
// envelope with the status derived from the error code.
func respondError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, status, err)
}

// currentUserID returns the authenticated user's ID from request locals.
// Routes behind AuthRequired always have it set.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok
}
