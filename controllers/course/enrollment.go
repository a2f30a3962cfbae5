package controllers

import (
	"context"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models"
	courseModels "coursehub/models/course"
	"coursehub/services"
	"coursehub/utils"
	courseValidator "coursehub/validators/course"
	"time"

	"github.com/gofiber/fiber/v2"
)

// sendEnrollmentEmail loads the recipient synchronously and mails in the background.
func sendEnrollmentEmail(userId, courseId uint) {
	var user models.User
	var course courseModels.Course
	if err := database.Database.Db.First(&user, userId).Error; err != nil {
		logger.Log.WithError(err).WithField("user_id", userId).Warn("enrollment email skipped")
		return
	}
	if err := database.Database.Db.First(&course, courseId).Error; err != nil {
		logger.Log.WithError(err).WithField("course_id", courseId).Warn("enrollment email skipped")
		return
	}

	subject, body := utils.EnrollmentEmail(user.Name, course.Title, course.Price.StringFixed(2))
	mailer := services.App.Mailer
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mailer.Send(ctx, user.Email, user.Name, subject, body); err != nil {
			logger.Log.WithError(err).WithField("user_id", userId).Warn("error sending enrollment email")
		}
	}()
}

// PurchaseCourse pays for a course from the caller's wallet
func PurchaseCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseId := c.Locals("id").(uint)
	enrollment, err := services.App.Wallet.Purchase(c.UserContext(), userId, courseId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	sendEnrollmentEmail(userId, courseId)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course purchased successfully", fiber.Map{
		"enrollment": enrollment,
	})
}

func UpdateProgress(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProgress").(*courseValidator.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollment, err := services.App.Wallet.UpdateProgress(c.UserContext(), userId, c.Locals("id").(uint), *reqData.ProgressPercentage)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully", fiber.Map{
		"enrollment": enrollment,
	})
}
