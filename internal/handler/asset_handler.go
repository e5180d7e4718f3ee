package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/report"
	"github.com/sefazor/brandkit-backend/internal/service"
)

type AssetHandler struct {
	assetService *service.AssetService
}

func NewAssetHandler(assetService *service.AssetService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
	}
}

func (h *AssetHandler) Upload(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return apperrors.ValidationFields("No file uploaded", map[string]string{"file": "required"})
	}
	src, err := file.Open()
	if err != nil {
		return apperrors.Internal(err)
	}
	defer src.Close()

	asset, err := h.assetService.Upload(
		c.UserContext(),
		caller.UserID,
		c.Params("formType"),
		file.Filename,
		file.Header.Get(fiber.HeaderContentType),
		file.Size,
		src,
	)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(report.Success("File uploaded", asset))
}
