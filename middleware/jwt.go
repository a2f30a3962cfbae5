package middleware

import (
	"coursehub/config"
	"coursehub/database"
	"coursehub/models"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const TokenTTL = 24 * time.Hour

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, name, email string, isAdmin bool) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(TokenTTL)

	claims := jwt.MapClaims{
		"userId":  userID,
		"name":    name,
		"email":   email,
		"isAdmin": isAdmin,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),       // issued at
		"exp":     expiresAt.Unix(), // expiry 24h
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	signed, err := token.SignedString(jwtSecret)
	return signed, expiresAt, err
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  false,
		"message": message,
	})
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	// Get the token from the Authorization header
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c, "Missing or invalid Authorization header")
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return unauthorized(c, "Invalid Authorization header format")
	}
	tokenString := authHeader[len("Bearer "):]

	// Parse and validate the token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return unauthorized(c, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return unauthorized(c, "Invalid token payload")
	}
	userID, ok := claims["userId"].(float64) // JWT numbers decode as float64
	if !ok {
		return unauthorized(c, "Invalid token payload")
	}

	jti, _ := claims["jti"].(string)
	if jti != "" {
		var revoked int64
		err := database.Database.Db.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&revoked).Error
		if err != nil {
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking token!", nil)
		}
		if revoked > 0 {
			return unauthorized(c, "Token has been revoked")
		}
	}

	var expiresAt time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0)
	}

	c.Locals("userId", uint(userID))
	c.Locals("jti", jti)
	c.Locals("tokenExpiresAt", expiresAt)

	return c.Next()
}
