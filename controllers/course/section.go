package controllers

import (
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	courseModels "coursehub/models/course"
	"coursehub/services"
	courseValidator "coursehub/validators/course"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func courseExists(courseId uint) (bool, error) {
	var count int64
	err := database.Database.Db.Model(&courseModels.Course{}).Where("id = ?", courseId).Count(&count).Error
	return count > 0, err
}

func findSection(courseId, sectionId uint) (courseModels.Section, error) {
	var section courseModels.Section
	err := database.Database.Db.Where("id = ? AND course_id = ?", sectionId, courseId).First(&section).Error
	return section, err
}

func GetSections(c *fiber.Ctx) error {
	courseId := c.Locals("courseId").(uint)

	exists, err := courseExists(courseId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !exists {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	sections := []courseModels.Section{}
	err = database.Database.Db.Where("course_id = ?", courseId).
		Order("order_index ASC").
		Order("id ASC").
		Find(&sections).Error
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections fetched successfully!", fiber.Map{
		"sections": sections,
	})
}

func GetSection(c *fiber.Ctx) error {
	section, err := findSection(c.Locals("courseId").(uint), c.Locals("id").(uint))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section fetched successfully!", fiber.Map{
		"section": section,
	})
}

// CreateSection adds a section to a course (Admin only)
func CreateSection(c *fiber.Ctx) error {
	courseId := c.Locals("courseId").(uint)

	reqData, ok := c.Locals("validatedSection").(*courseValidator.CreateSectionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	exists, err := courseExists(courseId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !exists {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	section := courseModels.Section{
		CourseID:   courseId,
		Title:      reqData.Title,
		OrderIndex: *reqData.OrderIndex,
	}
	if err := database.Database.Db.Create(&section).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section created successfully!", fiber.Map{
		"section": section,
	})
}

// UpdateSection (Admin only)
func UpdateSection(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSectionUpdate").(*courseValidator.UpdateSectionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	section, err := findSection(c.Locals("courseId").(uint), c.Locals("id").(uint))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if reqData.Title != nil {
		section.Title = *reqData.Title
	}
	if reqData.OrderIndex != nil {
		section.OrderIndex = *reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&section).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section updated successfully!", fiber.Map{
		"section": section,
	})
}

// DeleteSection removes the section and its local video rows (Admin only)
func DeleteSection(c *fiber.Ctx) error {
	courseId := c.Locals("courseId").(uint)

	section, err := findSection(courseId, c.Locals("id").(uint))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_section_id = ?", section.ID).Delete(&courseModels.Video{}).Error; err != nil {
			return err
		}
		return tx.Delete(&section).Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := services.App.Videos.RefreshTotalDuration(c.UserContext(), courseId); err != nil {
		logger.Log.WithError(err).WithField("course_id", courseId).Warn("failed to recompute course duration")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section deleted successfully!", nil)
}
