package serverutils

import (
	"errors"

	"migratemate-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts typed application errors bubbling out of
// handlers into consistent JSON responses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			status := apperrors.HTTPStatus(appErr)
			return ctx.Status(status).JSON(ErrorResponseWithCode(status, appErr.Message, string(appErr.Code)))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
