package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/formtype"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/internal/report"
	"github.com/sefazor/brandkit-backend/internal/service"
)

type AdminHandler struct {
	adminService    *service.AdminService
	purchaseService *service.PurchaseService
	registry        *formtype.Registry
}

func NewAdminHandler(adminService *service.AdminService, purchaseService *service.PurchaseService, registry *formtype.Registry) *AdminHandler {
	return &AdminHandler{
		adminService:    adminService,
		purchaseService: purchaseService,
		registry:        registry,
	}
}

func (h *AdminHandler) ListPurchases(c *fiber.Ctx) error {
	page, pageSize := pageParams(c)
	userID := c.QueryInt("user_id", 0)
	if userID < 0 {
		return apperrors.ValidationFields("Invalid user_id", map[string]string{"user_id": "must be a positive id"})
	}
	filter := models.PurchaseFilter{
		Status:   models.PurchaseStatus(c.Query("status")),
		UserID:   uint(userID),
		Page:     page,
		PageSize: pageSize,
	}

	purchases, total, err := h.adminService.ListAllPurchases(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(report.Success("Purchases retrieved",
		report.NewPage(report.Purchases(purchases), total, page, pageSize)))
}

func (h *AdminHandler) ListSubmissions(c *fiber.Ctx) error {
	page, pageSize := pageParams(c)
	filter := models.SubmissionFilter{
		FormType: c.Query("form_type"),
		Page:     page,
		PageSize: pageSize,
	}

	subs, total, err := h.adminService.ListSubmissions(c.UserContext(), filter)
	if err != nil {
		return err
	}

	views := report.Submissions(subs, func(formType string) int {
		if def, ok := h.registry.Get(formType); ok {
			return def.TotalSteps()
		}
		return 0
	})
	return c.JSON(report.Success("Submissions retrieved", report.NewPage(views, total, page, pageSize)))
}

func (h *AdminHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.adminService.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(report.Success("Summary retrieved", report.Summary(summary)))
}

// ExpirePurchases accepts an optional as_of query parameter (RFC 3339).
func (h *AdminHandler) ExpirePurchases(c *fiber.Ctx) error {
	var asOf time.Time
	if raw := c.Query("as_of"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.ValidationFields("Invalid as_of", map[string]string{"as_of": "must be RFC 3339"})
		}
		asOf = t
	}

	res, err := h.purchaseService.ExpireDue(c.UserContext(), asOf)
	if err != nil {
		return err
	}
	return c.JSON(report.Success("Expired purchases updated", res))
}
