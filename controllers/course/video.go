package controllers

import (
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/services"
	"coursehub/services/videos"
	"coursehub/utils"
	courseValidator "coursehub/validators/course"
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
)

type videoPath struct {
	courseId, sectionId, videoId uint
}

func pathIDs(c *fiber.Ctx) videoPath {
	p := videoPath{
		courseId:  c.Locals("courseId").(uint),
		sectionId: c.Locals("sectionId").(uint),
	}
	if id, ok := c.Locals("id").(uint); ok {
		p.videoId = id
	}
	return p
}

// canWatch reports whether the caller owns the course or is an admin.
func canWatch(c *fiber.Ctx, courseId uint) (bool, error) {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return false, nil
	}

	var user models.User
	if err := database.Database.Db.Select("id", "is_admin").First(&user, userId).Error; err != nil {
		return false, err
	}
	if user.IsAdmin {
		return true, nil
	}
	return services.App.Wallet.IsEnrolled(c.UserContext(), userId, courseId)
}

func GetVideos(c *fiber.Ctx) error {
	p := pathIDs(c)

	allowed, err := canWatch(c, p.courseId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You have not purchased this course", nil)
	}

	list, err := services.App.Videos.List(c.UserContext(), p.courseId, p.sectionId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Videos fetched successfully!", fiber.Map{
		"videos": list,
	})
}

// GetVideo returns the video with a signed playback block
func GetVideo(c *fiber.Ctx) error {
	p := pathIDs(c)

	allowed, err := canWatch(c, p.courseId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You have not purchased this course", nil)
	}

	detail, err := services.App.Videos.Show(c.UserContext(), p.courseId, p.sectionId, p.videoId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video fetched successfully!", fiber.Map{
		"video": detail,
	})
}

// CreateVideo registers a video locally and on the host (Admin only)
func CreateVideo(c *fiber.Ctx) error {
	p := pathIDs(c)

	reqData, ok := c.Locals("validatedVideo").(*courseValidator.CreateVideoRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	video, err := services.App.Videos.Create(c.UserContext(), p.courseId, p.sectionId, videos.CreateInput{
		Title:      reqData.Title,
		OrderIndex: reqData.OrderIndex,
		Duration:   reqData.Duration,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Video created successfully!", fiber.Map{
		"video": video,
	})
}

// UploadVideo streams the multipart file to the host (Admin only)
func UploadVideo(c *fiber.Ctx) error {
	p := pathIDs(c)

	fileHeader, ok := c.Locals("validatedUpload").(*multipart.FileHeader)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unable to read uploaded file!", nil)
	}
	defer file.Close()

	if _, err := utils.DetectVideoType(file); err != nil {
		if errors.Is(err, utils.ErrUnsupportedVideo) {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": err.Error()})
		}
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unable to read uploaded file!", nil)
	}

	video, err := services.App.Videos.Upload(c.UserContext(), p.courseId, p.sectionId, p.videoId, file, fileHeader.Size)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video uploaded successfully!", fiber.Map{
		"video": video,
	})
}

// UpdateVideo (Admin only)
func UpdateVideo(c *fiber.Ctx) error {
	p := pathIDs(c)

	reqData, ok := c.Locals("validatedVideoUpdate").(*courseValidator.UpdateVideoRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	in := videos.UpdateInput{
		Title:         reqData.Title,
		OrderIndex:    reqData.OrderIndex,
		Duration:      reqData.Duration,
		RefreshStatus: reqData.RefreshStatus,
	}
	if reqData.RemoteBunnyUpdate != nil {
		in.Remote = &videos.RemoteUpdate{
			Title:    reqData.RemoteBunnyUpdate.Title,
			IsPublic: reqData.RemoteBunnyUpdate.IsPublic,
		}
	}

	video, err := services.App.Videos.Update(c.UserContext(), p.courseId, p.sectionId, p.videoId, in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video updated successfully!", fiber.Map{
		"video": video,
	})
}

// DeleteVideo (Admin only)
func DeleteVideo(c *fiber.Ctx) error {
	p := pathIDs(c)

	if err := services.App.Videos.Delete(c.UserContext(), p.courseId, p.sectionId, p.videoId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video deleted successfully!", nil)
}

// ReorderVideos sets order_index for several videos of a section (Admin only)
func ReorderVideos(c *fiber.Ctx) error {
	p := pathIDs(c)

	items, ok := c.Locals("validatedReorder").([]videos.OrderItem)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := services.App.Videos.Reorder(c.UserContext(), p.courseId, p.sectionId, items); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Videos reordered successfully!", nil)
}
