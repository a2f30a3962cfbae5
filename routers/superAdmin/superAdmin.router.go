package superAdminRoutes

import (
	controllers "coursehub/controllers/course"
	superAdminController "coursehub/controllers/superAdmin"
	"coursehub/middleware"
	userValidator "coursehub/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupSuperAdminRoutes(router fiber.Router) {
	usersGroup := router.Group("/users", middleware.JWTMiddleware, middleware.AdminOnly)
	usersGroup.Get("/", userValidator.ListUsers(), superAdminController.ListUsers)
	usersGroup.Delete("/:id", middleware.ParseIDParams("id"), superAdminController.DeleteUser)

	dashGroup := router.Group("/admin/dashboard", middleware.JWTMiddleware, middleware.AdminOnly)
	dashGroup.Get("/stats", controllers.AdminDashboardStats)
}
