package blogController

import (
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/models"
	blogValidator "coursehub/validators/blog"
	courseValidator "coursehub/validators/course"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ListBlogs(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*courseValidator.ListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&models.Blog{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	blogs := []models.Blog{}
	err := db.Order("created_at DESC").
		Offset((reqData.Page - 1) * reqData.PerPage).
		Limit(reqData.PerPage).
		Find(&blogs).Error
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blogs retrieved successfully", fiber.Map{
		"blogs":      blogs,
		"pagination": middleware.Pagination(total, reqData.Page, reqData.PerPage),
	})
}

func GetBlog(c *fiber.Ctx) error {
	var blog models.Blog
	err := database.Database.Db.First(&blog, c.Locals("id").(uint)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Blog not found", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blog retrieved successfully", fiber.Map{
		"blog": blog,
	})
}

func CreateBlog(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBlog").(*blogValidator.CreateBlogRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	blog := models.Blog{
		Title:    reqData.Title,
		Content:  reqData.Content,
		ImageURL: reqData.ImageURL,
	}
	if err := database.Database.Db.Create(&blog).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Blog created successfully", fiber.Map{
		"blog": blog,
	})
}

func UpdateBlog(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBlogUpdate").(*blogValidator.UpdateBlogRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var blog models.Blog
	err := database.Database.Db.First(&blog, c.Locals("id").(uint)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Blog not found", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if reqData.Title != nil {
		blog.Title = *reqData.Title
	}
	if reqData.Content != nil {
		blog.Content = *reqData.Content
	}
	if reqData.ImageURL != nil {
		blog.ImageURL = reqData.ImageURL
	}

	if err := database.Database.Db.Save(&blog).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blog updated successfully", fiber.Map{
		"blog": blog,
	})
}

func DeleteBlog(c *fiber.Ctx) error {
	res := database.Database.Db.Delete(&models.Blog{}, c.Locals("id").(uint))
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Blog not found", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blog deleted successfully", nil)
}
