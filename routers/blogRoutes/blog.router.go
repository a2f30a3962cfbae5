package blogRoutes

import (
	blogController "coursehub/controllers/blog"
	"coursehub/middleware"
	blogValidator "coursehub/validators/blog"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

const blogsPerPage = 15

func SetupBlogRoutes(router fiber.Router) {
	blogGroup := router.Group("/blogs")

	blogGroup.Get("/", courseValidator.List(blogsPerPage), blogController.ListBlogs)
	blogGroup.Get("/:id", middleware.ParseIDParams("id"), blogController.GetBlog)

	blogGroup.Post("/", middleware.JWTMiddleware, middleware.AdminOnly, blogValidator.CreateBlog(), blogController.CreateBlog)
	blogGroup.Put("/:id", middleware.JWTMiddleware, middleware.AdminOnly, middleware.ParseIDParams("id"), blogValidator.UpdateBlog(), blogController.UpdateBlog)
	blogGroup.Delete("/:id", middleware.JWTMiddleware, middleware.AdminOnly, middleware.ParseIDParams("id"), blogController.DeleteBlog)
}
