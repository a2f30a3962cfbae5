package superAdminController

import (
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/services"
	userValidator "coursehub/validators/userValidator"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListUsers pages through all accounts (Admin only)
func ListUsers(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUserList").(*userValidator.ListUsersQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.User{})
	if reqData.Search != "" {
		like := "%" + reqData.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var users []models.User
	err := query.
		Order("created_at DESC").
		Offset((reqData.Page - 1) * reqData.PerPage).
		Limit(reqData.PerPage).
		Find(&users).Error
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	summaries := make([]models.UserSummary, len(users))
	for i, u := range users {
		summaries[i] = u.Summary()
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users retrieved successfully", fiber.Map{
		"users":      summaries,
		"pagination": middleware.Pagination(total, reqData.Page, reqData.PerPage),
	})
}

// DeleteUser soft-deletes an account and drops its leaderboard row (Admin only)
func DeleteUser(c *fiber.Ctx) error {
	adminId, _ := c.Locals("userId").(uint)
	targetId := c.Locals("id").(uint)

	if adminId == targetId {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot delete your own account!", nil)
	}

	db := database.Database.Db
	var user models.User
	if err := db.First(&user, targetId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	if err := db.Delete(&user).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := services.App.Leaderboard.Prune(c.UserContext(), user.ID); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("failed to prune leaderboard entry")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully", nil)
}
