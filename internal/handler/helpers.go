package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/middleware"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/pkg/utils"
)

// bind parses the JSON body into out and runs the struct validator on it.
func bind(c *fiber.Ctx, v *utils.Validator, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := v.Struct(out); err != nil {
		if fields := utils.Fields(err); fields != nil {
			return apperrors.ValidationFields("Validation failed", fields)
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}

func identity(c *fiber.Ctx) (models.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return models.Identity{}, apperrors.Unauthorized("User not authenticated")
	}
	return id, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("Invalid " + name)
	}
	return uint(id), nil
}

func pageParams(c *fiber.Ctx) (page, pageSize int) {
	return c.QueryInt("page", 1), c.QueryInt("page_size", 20)
}
