package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/report"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.db.Ping(c.UserContext()); err != nil {
		return apperrors.Store(err)
	}
	return c.JSON(report.Success("ok", fiber.Map{"database": "up"}))
}
