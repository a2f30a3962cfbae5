package userProfileRoutes

import (
	userProfileController "coursehub/controllers/userControllers"
	"coursehub/middleware"
	userProfileValidator "coursehub/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(router fiber.Router) {
	userGroup := router.Group("/user")

	userGroup.Get("/", middleware.JWTMiddleware, userProfileController.GetProfile)
	userGroup.Put("/profile", middleware.JWTMiddleware, userProfileValidator.UpdateProfile(), userProfileController.UpdateProfile)
	userGroup.Put("/change-password", middleware.JWTMiddleware, userProfileValidator.ChangePassword(), userProfileController.ChangePassword)
	userGroup.Get("/wallet", middleware.JWTMiddleware, userProfileController.GetWallet)
	userGroup.Get("/leaderboard", middleware.JWTMiddleware, userProfileController.GetLeaderboard)
}
