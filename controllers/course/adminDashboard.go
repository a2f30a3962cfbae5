package controllers

import (
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/models"
	courseModels "coursehub/models/course"
	courseValidator "coursehub/validators/course"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdminDashboardStats returns catalog totals and today's sales (Admin only)
func AdminDashboardStats(c *fiber.Ctx) error {
	db := database.Database.Db
	startOfDay := now.BeginningOfDay()

	var users, courses, enrollments, purchasesToday int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := db.Model(&courseModels.Course{}).Count(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := db.Model(&courseModels.Enrollment{}).Count(&enrollments).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	purchases := func() *gorm.DB {
		return db.Model(&models.WalletTransaction{}).
			Where("transaction_type = ? AND transaction_date >= ?", models.TransactionTypePurchase, startOfDay)
	}
	if err := purchases().Count(&purchasesToday).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	// Purchase ledger rows carry negative amounts.
	var amounts []decimal.Decimal
	if err := purchases().Pluck("amount", &amounts).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	revenue := decimal.Zero
	for _, a := range amounts {
		revenue = revenue.Add(a.Abs())
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"total_users":       users,
		"total_courses":     courses,
		"total_enrollments": enrollments,
		"purchases_today":   purchasesToday,
		"revenue_today":     revenue.StringFixed(2),
		"since":             startOfDay.Format(time.RFC3339),
	})
}

// AdminGetCourseEnrollments lists the students enrolled in a course (Admin only)
func AdminGetCourseEnrollments(c *fiber.Ctx) error {
	courseId := c.Locals("id").(uint)

	reqData, ok := c.Locals("validatedList").(*courseValidator.ListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	exists, err := courseExists(courseId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !exists {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	type EnrollmentWithUser struct {
		courseModels.Enrollment
		UserName  string `json:"user_name"`
		UserEmail string `json:"user_email"`
	}

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("user_courses.course_id = ?", courseId)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	result := []EnrollmentWithUser{}
	err = db.Select("user_courses.*, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = user_courses.user_id").
		Order("user_courses.created_at DESC").
		Offset((reqData.Page - 1) * reqData.PerPage).
		Limit(reqData.PerPage).
		Scan(&result).Error
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"pagination":  middleware.Pagination(total, reqData.Page, reqData.PerPage),
	})
}
