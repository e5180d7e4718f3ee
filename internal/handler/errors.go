package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/report"
	"github.com/sefazor/brandkit-backend/pkg/logger"
	"go.uber.org/zap"
)

// ErrorHandler renders every error returned by a handler or middleware as the
// standard envelope with the matching status code.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(report.Failure(fiberErr.Message, nil))
		}

		appErr := apperrors.From(err)
		if appErr.HTTPCode >= fiber.StatusInternalServerError {
			logger.FromContext(c.UserContext(), log).Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("code", string(appErr.Code)),
				zap.Error(err),
			)
		}
		return c.Status(appErr.HTTPCode).JSON(report.Failure(appErr.Message, appErr.Details))
	}
}
