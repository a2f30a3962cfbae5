package authController

import (
	"context"
	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/services"
	"coursehub/utils"
	authValidator "coursehub/validators/auth"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 60 * time.Minute

func Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", reqData.Email).Count(&existing).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if existing > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		logger.Log.WithError(err).Error("error hashing password")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	walletBalance, err := decimal.NewFromString(config.AppConfig.SignupWalletBalance)
	if err != nil {
		walletBalance = decimal.Zero
	}

	verifiedAt := time.Now()
	newUser := models.User{
		Name:            reqData.Name,
		Email:           reqData.Email,
		Password:        string(hashedPassword),
		PointsBalance:   int64(config.AppConfig.SignupPointsBalance),
		WalletBalance:   walletBalance,
		EmailVerifiedAt: &verifiedAt,
	}

	if err := db.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
		}
		logger.Log.WithError(err).Error("error saving user")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registration successful!", fiber.Map{
		"user": newUser.Summary(),
	})
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if user.EmailVerifiedAt == nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please verify your email before logging in", nil)
	}

	device := c.Get(fiber.HeaderUserAgent)
	if len(device) > 512 {
		device = device[:512]
	}
	loginTracking := models.LoginTracking{
		UserID:    user.ID,
		IPAddress: c.IP(),
		Device:    device,
		Timestamp: time.Now(),
	}
	if err := database.Database.Db.Create(&loginTracking).Error; err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("error saving login tracking details")
	}

	token, expiresAt, err := middleware.GenerateJWT(user.ID, user.Name, user.Email, user.IsAdmin)
	if err != nil {
		logger.Log.WithError(err).Error("error generating token")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Authenticated", fiber.Map{
		"token":      token,
		"expires_at": expiresAt,
		"user": fiber.Map{
			"id":      user.ID,
			"name":    user.Name,
			"email":   user.Email,
			"isAdmin": user.IsAdmin,
		},
	})
}

// LoginHistoryList pages through the caller's logins, newest first
func LoginHistoryList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedLoginHistory").(*authValidator.LoginHistoryQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&models.LoginTracking{}).Where("user_id = ?", userId)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	history := []models.LoginTracking{}
	err := db.Order("created_at DESC").Order("id DESC").
		Offset((reqData.Page - 1) * reqData.Limit).
		Limit(reqData.Limit).
		Find(&history).Error
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": history,
		"pagination":    middleware.Pagination(total, reqData.Page, reqData.Limit),
	})
}

// Logout revokes the presented token until it would have expired.
func Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	expiresAt, _ := c.Locals("tokenExpiresAt").(time.Time)
	if jti == "" {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully", nil)
	}
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(middleware.TokenTTL)
	}

	db := database.Database.Db
	if err := db.Create(&models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return middleware.ErrorResponse(c, err)
	}

	// opportunistic cleanup of revocations that no longer matter
	db.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully", nil)
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ForgotPassword always answers the same way so callers cannot probe for accounts.
func ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgotPassword").(*authValidator.ForgotPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	const message = "If the email is registered, a password reset link has been sent."

	db := database.Database.Db
	var user models.User
	if err := db.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusOK, true, message, nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	token := uuid.NewString()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", user.Email).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.PasswordResetToken{
			Email:     user.Email,
			TokenHash: hashResetToken(token),
			ExpiresAt: time.Now().Add(resetTokenTTL),
		}).Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	link := config.AppConfig.AppURL + "/reset-password?token=" + url.QueryEscape(token) + "&email=" + url.QueryEscape(user.Email)
	subject, html := utils.PasswordResetEmail(user.Name, link, int(resetTokenTTL.Minutes()))

	mailer := services.App.Mailer
	go func(to, name string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mailer.Send(ctx, to, name, subject, html); err != nil {
			logger.Log.WithError(err).WithField("to", to).Error("failed to send password reset email")
		}
	}(user.Email, user.Name)

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, nil)
}

func ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*authValidator.ResetPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var reset models.PasswordResetToken
	err := db.Where("email = ? AND token_hash = ?", reqData.Email, hashResetToken(reqData.Token)).First(&reset).Error
	if err != nil || reset.ExpiresAt.Before(time.Now()) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid token or email.", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("email = ?", reqData.Email).Update("password", string(hashedPassword))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("email = ?", reqData.Email).Delete(&models.PasswordResetToken{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid token or email.", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password has been reset successfully.", nil)
}
