package leaderboardRoutes

import (
	leaderboardController "coursehub/controllers/leaderboard"
	"coursehub/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(router fiber.Router) {
	leaderboardGroup := router.Group("/leaderboard", middleware.JWTMiddleware)

	leaderboardGroup.Get("/top", leaderboardController.TopLeaderboard)
	leaderboardGroup.Post("/refresh", middleware.AdminOnly, leaderboardController.RefreshLeaderboard)
}
