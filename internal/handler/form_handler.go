package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/internal/report"
	"github.com/sefazor/brandkit-backend/internal/service"
	"github.com/sefazor/brandkit-backend/pkg/utils"
)

type FormHandler struct {
	formService *service.FormService
	validator   *utils.Validator
}

func NewFormHandler(formService *service.FormService, validator *utils.Validator) *FormHandler {
	return &FormHandler{
		formService: formService,
		validator:   validator,
	}
}

func (h *FormHandler) ListTypes(c *fiber.Ctx) error {
	return c.JSON(report.Success("Form types retrieved", h.formService.FormTypes()))
}

func (h *FormHandler) SaveStep(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	step, err := c.ParamsInt("step")
	if err != nil {
		return apperrors.Validation("Invalid step")
	}

	var req models.SaveStepRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	progress, err := h.formService.SaveStep(c.UserContext(), caller.UserID, c.Params("formType"), step, req.Fields)
	if err != nil {
		return err
	}

	return c.JSON(report.Success("Step saved", report.Progress(progress)))
}

func (h *FormHandler) GetFormData(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	formType := c.Params("formType")

	sub, found, err := h.formService.GetFormData(c.UserContext(), caller.UserID, formType)
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(report.Success("No form data saved yet", nil))
	}

	def, err := h.formService.Definition(formType)
	if err != nil {
		return err
	}
	return c.JSON(report.Success("Form data retrieved", report.Submission(sub, def.TotalSteps())))
}

func (h *FormHandler) CompleteForm(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	progress, err := h.formService.CompleteForm(c.UserContext(), caller.UserID, c.Params("formType"))
	if err != nil {
		return err
	}

	return c.JSON(report.Success("Form completed", report.Progress(progress)))
}
