package blogValidator

import (
	"coursehub/middleware"

	"github.com/gofiber/fiber/v2"
)

type CreateBlogRequest struct {
	Title    string  `json:"title" validate:"required,max=255"`
	Content  string  `json:"content" validate:"required"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

type UpdateBlogRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

func CreateBlog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateBlogRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedBlog", reqData)
		return c.Next()
	}
}

func UpdateBlog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateBlogRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedBlogUpdate", reqData)
		return c.Next()
	}
}
