package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/internal/report"
	"github.com/sefazor/brandkit-backend/internal/service"
	"github.com/sefazor/brandkit-backend/pkg/utils"
)

// IdempotencyHeader lets clients retry a checkout without buying twice.
const IdempotencyHeader = "Idempotency-Key"

type PurchaseHandler struct {
	purchaseService *service.PurchaseService
	validator       *utils.Validator
}

func NewPurchaseHandler(purchaseService *service.PurchaseService, validator *utils.Validator) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		validator:       validator,
	}
}

func (h *PurchaseHandler) CreatePackagePurchase(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req models.CreatePackagePurchaseRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	purchase, err := h.purchaseService.CreatePackagePurchase(c.UserContext(), service.PackagePurchaseInput{
		UserID:         caller.UserID,
		PackageID:      req.PackageID,
		AddonIDs:       req.AddonIDs,
		IdempotencyKey: c.Get(IdempotencyHeader),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(report.Success("Purchase created", report.Purchase(purchase)))
}

func (h *PurchaseHandler) CreateAddonPurchase(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req models.CreateAddonPurchaseRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	purchase, err := h.purchaseService.CreateAddonPurchase(c.UserContext(), service.AddonPurchaseInput{
		UserID:         caller.UserID,
		AddonID:        req.AddonID,
		DurationDays:   req.DurationDays,
		IdempotencyKey: c.Get(IdempotencyHeader),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(report.Success("Addon purchase created", report.AddonPurchase(purchase)))
}

func (h *PurchaseHandler) ListUserPurchases(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	purchases, err := h.purchaseService.ListUserPurchases(c.UserContext(), caller.UserID)
	if err != nil {
		return err
	}

	return c.JSON(report.Success("Purchases retrieved", report.UserPurchases(purchases)))
}

// CancelPurchase serves both the owner route and the admin route; the
// service decides whether the caller may cancel.
func (h *PurchaseHandler) CancelPurchase(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	purchase, err := h.purchaseService.CancelPurchase(c.UserContext(), id, caller)
	if err != nil {
		return err
	}

	return c.JSON(report.Success("Purchase cancelled", report.Purchase(purchase)))
}

func (h *PurchaseHandler) CancelAddonPurchase(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	purchase, err := h.purchaseService.CancelAddonPurchase(c.UserContext(), id, caller)
	if err != nil {
		return err
	}

	return c.JSON(report.Success("Addon purchase cancelled", report.AddonPurchase(purchase)))
}
