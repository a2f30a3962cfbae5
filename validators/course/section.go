package courseValidator

import (
	"coursehub/middleware"

	"github.com/gofiber/fiber/v2"
)

type CreateSectionRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	OrderIndex *int   `json:"order_index" validate:"required"`
}

type UpdateSectionRequest struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=255"`
	OrderIndex *int    `json:"order_index"`
}

func CreateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateSectionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

func UpdateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateSectionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSectionUpdate", reqData)
		return c.Next()
	}
}
