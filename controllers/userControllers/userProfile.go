package userController

import (
	"coursehub/config"
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/services"
	userValidator "coursehub/validators/userValidator"
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func currentUser(c *fiber.Ctx) (models.User, error) {
	var user models.User
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return user, gorm.ErrRecordNotFound
	}
	err := database.Database.Db.First(&user, userId).Error
	return user, err
}

func GetProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User retrieved successfully", fiber.Map{
		"user": user.Summary(),
	})
}

func UpdateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	updates := map[string]interface{}{}
	if reqData.Name != nil {
		updates["name"] = *reqData.Name
		user.Name = *reqData.Name
	}
	if reqData.Email != nil && *reqData.Email != user.Email {
		var taken int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", *reqData.Email, user.ID).Count(&taken).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if taken > 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"email": "The email has already been taken."})
		}
		updates["email"] = *reqData.Email
		user.Email = *reqData.Email
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return middleware.ValidationErrorResponse(c, map[string]string{"email": "The email has already been taken."})
			}
			return middleware.ErrorResponse(c, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully", fiber.Map{
		"user": user.Summary(),
	})
}

func ChangePassword(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedChangePassword").(*userValidator.ChangePasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.CurrentPassword)); err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"current_password": "Current password is incorrect"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if err := database.Database.Db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully", nil)
}

func GetWallet(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet retrieved successfully", fiber.Map{
		"wallet_balance": user.WalletBalance,
		"points_balance": user.PointsBalance,
	})
}

// GetLeaderboard returns the caller's own standing.
func GetLeaderboard(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	standing, err := services.App.Leaderboard.ForUser(c.UserContext(), userId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Leaderboard retrieved successfully", fiber.Map{
		"points": standing.Points,
		"rank":   standing.Rank,
	})
}
