package serverutils

import (
	"errors"

	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps errors escaping handlers to wire responses. Classified
// errors keep their kind and status; everything else is a 500 with the
// detail withheld from the client.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			if appErr.Kind == apperrors.KindInternal || appErr.Kind == apperrors.KindUnavailable {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"error": err.Error(),
				})
			}
			return ctx.Status(appErr.Kind.HTTPStatus()).JSON(ErrorResponse(string(appErr.Kind), appErr.Detail))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(string(apperrors.KindInternal), fiberErr.Message))
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(string(apperrors.KindInternal), "internal server error"))
	}
}
