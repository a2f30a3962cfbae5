// Package routers mounts every route group under /api.
package routers

import (
	authRoutes "coursehub/routers/authRoutes"
	blogRoutes "coursehub/routers/blogRoutes"
	courseRoutes "coursehub/routers/courseRoutes"
	leaderboardRoutes "coursehub/routers/leaderboardRoutes"
	superAdminRoutes "coursehub/routers/superAdmin"
	userProfileRoutes "coursehub/routers/userRoutes"
	walletRoutes "coursehub/routers/walletRoutes"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, uploadMaxBytes int64) {
	api := app.Group("/api")

	authRoutes.SetupAuthRoutes(api)
	userProfileRoutes.SetupUserRoutes(api)
	walletRoutes.SetupWalletRoutes(api)
	superAdminRoutes.SetupSuperAdminRoutes(api)
	courseRoutes.SetupCourseRoutes(api, uploadMaxBytes)
	blogRoutes.SetupBlogRoutes(api)
	leaderboardRoutes.SetupLeaderboardRoutes(api)
}
