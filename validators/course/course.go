package courseValidator

import (
	"coursehub/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateCourseRequest struct {
	Title       string           `json:"title" validate:"required,max=255"`
	Subtitle    *string          `json:"subtitle" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Thumbnail   *string          `json:"thumbnail" validate:"omitempty,url"`
	LibraryID   *string          `json:"library_id" validate:"omitempty,max=64"`
	APIKey      *string          `json:"api_key" validate:"omitempty,max=255"`
}

type UpdateCourseRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=255"`
	Subtitle    *string          `json:"subtitle" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Thumbnail   *string          `json:"thumbnail" validate:"omitempty,url"`
	LibraryID   *string          `json:"library_id" validate:"omitempty,max=64"`
	APIKey      *string          `json:"api_key" validate:"omitempty,max=255"`
}

type ListQuery struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

type ProgressRequest struct {
	ProgressPercentage *float64 `json:"progress_percentage" validate:"required,gte=0,lte=100"`
}

func validatePrice(price *decimal.Decimal, required bool, errors map[string]string) {
	if price == nil {
		if required {
			errors["price"] = "price is required"
		}
		return
	}
	if price.IsNegative() {
		errors["price"] = "price must be greater than or equal to 0"
	}
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := middleware.ValidateStruct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		validatePrice(reqData.Price, true, errors)
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := middleware.ValidateStruct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		validatePrice(reqData.Price, false, errors)
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// List parses pagination for catalog listings. defaultPerPage applies when per_page is absent.
func List(defaultPerPage int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.Page, reqData.PerPage = middleware.NormalizePage(reqData.Page, reqData.PerPage, defaultPerPage)

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

func Progress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProgressRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}
