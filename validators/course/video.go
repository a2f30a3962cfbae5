package courseValidator

import (
	"coursehub/middleware"
	"coursehub/services/videos"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type CreateVideoRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	OrderIndex *int   `json:"order_index" validate:"required"`
	Duration   *int64 `json:"duration" validate:"omitempty,gte=0"`
}

type RemoteVideoUpdate struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=255"`
	IsPublic *bool   `json:"is_public"`
}

type UpdateVideoRequest struct {
	Title             *string            `json:"title" validate:"omitempty,min=1,max=255"`
	OrderIndex        *int               `json:"order_index" validate:"omitempty,gte=0"`
	Duration          *int64             `json:"duration" validate:"omitempty,gte=0"`
	RefreshStatus     bool               `json:"refresh_status"`
	RemoteBunnyUpdate *RemoteVideoUpdate `json:"remote_bunny_update"`
}

func CreateVideo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateVideoRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVideo", reqData)
		return c.Next()
	}
}

func UpdateVideo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateVideoRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVideoUpdate", reqData)
		return c.Next()
	}
}

// ReorderVideos expects a JSON array of {id, order_index}.
func ReorderVideos() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []videos.OrderItem
		if err := c.BodyParser(&items); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if len(items) == 0 {
			errors["items"] = "At least one item is required"
		}
		for i, item := range items {
			if item.ID == 0 {
				errors[fmt.Sprintf("%d.id", i)] = "id is required"
			}
			if item.OrderIndex < 0 {
				errors[fmt.Sprintf("%d.order_index", i)] = "order_index must be greater than or equal to 0"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReorder", items)
		return c.Next()
	}
}

// UploadVideo checks that a file part is present and within the size limit.
func UploadVideo(maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "file is required"})
		}
		if maxBytes > 0 && file.Size > maxBytes {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": fmt.Sprintf("file must not be larger than %d bytes", maxBytes)})
		}

		c.Locals("validatedUpload", file)
		return c.Next()
	}
}
