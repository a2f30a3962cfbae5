package middleware

import (
	"coursehub/apperrors"
	"coursehub/logger"
	"errors"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse renders a service error with the status its kind maps to.
// Storage failures are logged and hidden behind a generic message.
func ErrorResponse(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)

	var validation *apperrors.ValidationError
	if errors.As(err, &validation) && len(validation.Fields) > 0 {
		return ValidationErrorResponse(c, validation.Fields)
	}

	if status == fiber.StatusInternalServerError {
		logger.Log.WithError(err).WithField("path", c.Path()).Error("request failed")
		return JsonResponse(c, status, false, "Something went wrong!", nil)
	}

	var provider *apperrors.ProviderError
	if errors.As(err, &provider) {
		return JsonResponse(c, status, false, "Video provider error: "+provider.Message, nil)
	}

	return JsonResponse(c, status, false, err.Error(), nil)
}

// ErrorHandler is the fiber fallback for errors returned by handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonResponse(c, fe.Code, false, fe.Message, nil)
	}
	return ErrorResponse(c, err)
}
