package courseRoutes

import (
	controllers "coursehub/controllers/course"
	"coursehub/middleware"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

const coursesPerPage = 10

// SetupCourseRoutes wires the catalog, enrollment, section and video routes
func SetupCourseRoutes(router fiber.Router, uploadMaxBytes int64) {
	courseGroup := router.Group("/courses", middleware.JWTMiddleware)
	admin := middleware.AdminOnly

	courseGroup.Get("/", validators.List(coursesPerPage), controllers.GetAllCourses)
	courseGroup.Post("/", admin, validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Get("/:id", middleware.ParseIDParams("id"), controllers.GetCourse)
	courseGroup.Put("/:id", admin, middleware.ParseIDParams("id"), validators.UpdateCourse(), controllers.UpdateCourse)
	courseGroup.Delete("/:id", admin, middleware.ParseIDParams("id"), controllers.DeleteCourse)
	courseGroup.Get("/:id/enrollments", admin, middleware.ParseIDParams("id"), validators.List(coursesPerPage), controllers.AdminGetCourseEnrollments)

	// Enrollment
	courseGroup.Post("/:id/purchase", middleware.ParseIDParams("id"), controllers.PurchaseCourse)
	courseGroup.Post("/:id/progress", middleware.ParseIDParams("id"), validators.Progress(), controllers.UpdateProgress)

	// Sections
	sectionGroup := courseGroup.Group("/:courseId/course-sections")
	sectionIDs := middleware.ParseIDParams("courseId", "id")
	sectionGroup.Get("/", middleware.ParseIDParams("courseId"), controllers.GetSections)
	sectionGroup.Post("/", admin, middleware.ParseIDParams("courseId"), validators.CreateSection(), controllers.CreateSection)
	sectionGroup.Get("/:id", sectionIDs, controllers.GetSection)
	sectionGroup.Put("/:id", admin, sectionIDs, validators.UpdateSection(), controllers.UpdateSection)
	sectionGroup.Delete("/:id", admin, sectionIDs, controllers.DeleteSection)

	// Videos; reorder is registered before /:id
	videoGroup := sectionGroup.Group("/:sectionId/videos")
	sectionPath := middleware.ParseIDParams("courseId", "sectionId")
	videoIDs := middleware.ParseIDParams("courseId", "sectionId", "id")
	videoGroup.Get("/", sectionPath, controllers.GetVideos)
	videoGroup.Post("/", admin, sectionPath, validators.CreateVideo(), controllers.CreateVideo)
	videoGroup.Put("/reorder", admin, sectionPath, validators.ReorderVideos(), controllers.ReorderVideos)
	videoGroup.Get("/:id", videoIDs, controllers.GetVideo)
	videoGroup.Put("/:id", admin, videoIDs, validators.UpdateVideo(), controllers.UpdateVideo)
	videoGroup.Delete("/:id", admin, videoIDs, controllers.DeleteVideo)
	videoGroup.Post("/:id/upload", admin, videoIDs, validators.UploadVideo(uploadMaxBytes), controllers.UploadVideo)
}
