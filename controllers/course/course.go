package controllers

import (
	"coursehub/database"
	"coursehub/middleware"
	courseModels "coursehub/models/course"
	courseValidator "coursehub/validators/course"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetAllCourses lists the catalog, newest first
func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*courseValidator.ListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&courseModels.Course{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	courses := []courseModels.Course{}
	err := db.Order("created_at DESC").
		Order("id DESC").
		Offset((reqData.Page - 1) * reqData.PerPage).
		Limit(reqData.PerPage).
		Find(&courses).Error
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    courses,
		"pagination": middleware.Pagination(total, reqData.Page, reqData.PerPage),
	})
}

func GetCourse(c *fiber.Ctx) error {
	var course courseModels.Course
	err := database.Database.Db.First(&course, c.Locals("id").(uint)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var sections []courseModels.Section
	if err := database.Database.Db.Where("course_id = ?", course.ID).Order("order_index ASC").Order("id ASC").Find(&sections).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":   course,
		"sections": sections,
	})
}

// CreateCourse adds a course to the catalog (Admin only)
func CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := courseModels.Course{
		Title:       reqData.Title,
		Subtitle:    reqData.Subtitle,
		Description: reqData.Description,
		Price:       reqData.Price.Round(2),
		Thumbnail:   reqData.Thumbnail,
		LibraryID:   reqData.LibraryID,
		APIKey:      reqData.APIKey,
	}
	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", fiber.Map{
		"course": course,
	})
}

// UpdateCourse patches the provided fields (Admin only)
func UpdateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourseUpdate").(*courseValidator.UpdateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course courseModels.Course
	err := database.Database.Db.First(&course, c.Locals("id").(uint)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if reqData.Title != nil {
		course.Title = *reqData.Title
	}
	if reqData.Subtitle != nil {
		course.Subtitle = reqData.Subtitle
	}
	if reqData.Description != nil {
		course.Description = reqData.Description
	}
	if reqData.Price != nil {
		course.Price = reqData.Price.Round(2)
	}
	if reqData.Thumbnail != nil {
		course.Thumbnail = reqData.Thumbnail
	}
	if reqData.LibraryID != nil {
		course.LibraryID = reqData.LibraryID
	}
	if reqData.APIKey != nil {
		course.APIKey = reqData.APIKey
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", fiber.Map{
		"course": course,
	})
}

// DeleteCourse removes a course with its sections and local video rows (Admin only).
// Remote videos are left on the host.
func DeleteCourse(c *fiber.Ctx) error {
	courseId := c.Locals("id").(uint)

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var course courseModels.Course
		if err := tx.First(&course, courseId).Error; err != nil {
			return err
		}

		sectionIDs := tx.Model(&courseModels.Section{}).Select("id").Where("course_id = ?", courseId)
		if err := tx.Where("course_section_id IN (?)", sectionIDs).Delete(&courseModels.Video{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseId).Delete(&courseModels.Section{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

