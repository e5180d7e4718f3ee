package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/internal/report"
	"github.com/sefazor/brandkit-backend/internal/service"
	"github.com/sefazor/brandkit-backend/pkg/utils"
)

// CatalogHandler serves packages and addons. The public routes only ever see
// active entries; the admin routes see everything.
type CatalogHandler struct {
	catalogService *service.CatalogService
	validator      *utils.Validator
}

func NewCatalogHandler(catalogService *service.CatalogService, validator *utils.Validator) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator,
	}
}

func (h *CatalogHandler) ListPackages(c *fiber.Ctx) error {
	return h.listPackages(c, false)
}

func (h *CatalogHandler) AdminListPackages(c *fiber.Ctx) error {
	return h.listPackages(c, true)
}

func (h *CatalogHandler) listPackages(c *fiber.Ctx, includeInactive bool) error {
	pkgs, err := h.catalogService.ListPackages(c.UserContext(), includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(report.Success("Packages retrieved", report.Packages(pkgs)))
}

func (h *CatalogHandler) GetPackage(c *fiber.Ctx) error {
	return h.getPackage(c, false)
}

func (h *CatalogHandler) AdminGetPackage(c *fiber.Ctx) error {
	return h.getPackage(c, true)
}

func (h *CatalogHandler) getPackage(c *fiber.Ctx, includeInactive bool) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	pkg, err := h.catalogService.GetPackage(c.UserContext(), id, includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(report.Success("Package retrieved", report.Package(pkg)))
}

func (h *CatalogHandler) CreatePackage(c *fiber.Ctx) error {
	var req models.CreatePackageRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	pkg, err := h.catalogService.CreatePackage(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report.Success("Package created", report.Package(pkg)))
}

func (h *CatalogHandler) UpdatePackage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdatePackageRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	pkg, err := h.catalogService.UpdatePackage(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(report.Success("Package updated", report.Package(pkg)))
}

func (h *CatalogHandler) ListAddons(c *fiber.Ctx) error {
	return h.listAddons(c, false)
}

func (h *CatalogHandler) AdminListAddons(c *fiber.Ctx) error {
	return h.listAddons(c, true)
}

func (h *CatalogHandler) listAddons(c *fiber.Ctx, includeInactive bool) error {
	addons, err := h.catalogService.ListAddons(c.UserContext(), includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(report.Success("Addons retrieved", report.Addons(addons)))
}

func (h *CatalogHandler) AdminGetAddon(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	addon, err := h.catalogService.GetAddon(c.UserContext(), id, true)
	if err != nil {
		return err
	}
	return c.JSON(report.Success("Addon retrieved", report.Addon(addon)))
}

func (h *CatalogHandler) CreateAddon(c *fiber.Ctx) error {
	var req models.CreateAddonRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	addon, err := h.catalogService.CreateAddon(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report.Success("Addon created", report.Addon(addon)))
}

func (h *CatalogHandler) UpdateAddon(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateAddonRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	addon, err := h.catalogService.UpdateAddon(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(report.Success("Addon updated", report.Addon(addon)))
}
