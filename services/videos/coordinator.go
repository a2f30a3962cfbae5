// Package videos keeps local video records in step with the remote video host.
package videos

import (
	"context"
	"coursehub/apperrors"
	courseModels "coursehub/models/course"
	"coursehub/services/bunny"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Provider is the remote video host as seen by the coordinator.
type Provider interface {
	CreateVideo(ctx context.Context, title string) (bunny.RemoteVideo, error)
	GetVideo(ctx context.Context, guid string) (bunny.RemoteVideo, error)
	UpdateVideo(ctx context.Context, guid string, update bunny.VideoUpdate) (json.RawMessage, error)
	DeleteVideo(ctx context.Context, guid string) error
	UploadBinary(ctx context.Context, guid string, body io.Reader, size int64) error
}

// ProviderFactory builds a provider bound to one library.
type ProviderFactory func(creds bunny.Credentials) Provider

type Config struct {
	Defaults   bunny.Credentials
	SigningKey string
	EmbedURL   string
	TokenTTL   time.Duration
}

type Coordinator struct {
	db        *gorm.DB
	providers ProviderFactory
	cfg       Config
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewCoordinator(db *gorm.DB, providers ProviderFactory, cfg Config, log logrus.FieldLogger) *Coordinator {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &Coordinator{db: db, providers: providers, cfg: cfg, log: log, now: time.Now}
}

type CreateInput struct {
	Title      string
	OrderIndex *int
	Duration   *int64
}

// RemoteUpdate patches metadata on the host.
type RemoteUpdate struct {
	Title    *string
	IsPublic *bool
}

type UpdateInput struct {
	Title         *string
	OrderIndex    *int
	Duration      *int64
	RefreshStatus bool
	Remote        *RemoteUpdate
}

type OrderItem struct {
	ID         uint `json:"id"`
	OrderIndex int  `json:"order_index"`
}

type Playback struct {
	LibraryID string `json:"library_id"`
	VideoID   string `json:"video_id"`
	Token     string `json:"token"`
	Expires   int64  `json:"expires"`
	IframeURL string `json:"iframe_url"`
}

// Detail is a video with a signed player block when it has a remote counterpart.
type Detail struct {
	courseModels.Video
	Playback *Playback `json:"playback"`
}

func (c *Coordinator) List(ctx context.Context, courseID, sectionID uint) ([]courseModels.Video, error) {
	if _, _, err := c.loadSection(ctx, courseID, sectionID); err != nil {
		return nil, err
	}

	videos := []courseModels.Video{}
	err := c.db.WithContext(ctx).
		Where("course_section_id = ?", sectionID).
		Order("order_index ASC").
		Order("id ASC").
		Find(&videos).Error
	if err != nil {
		return nil, apperrors.Storage("list videos", err)
	}
	return videos, nil
}

// Show returns the video with a playback token valid for the configured TTL.
func (c *Coordinator) Show(ctx context.Context, courseID, sectionID, videoID uint) (Detail, error) {
	course, _, video, err := c.loadVideo(ctx, courseID, sectionID, videoID)
	if err != nil {
		return Detail{}, err
	}

	detail := Detail{Video: video}
	if video.BunnyGUID != nil {
		detail.Playback = c.playback(course, *video.BunnyGUID)
	}
	return detail, nil
}

func (c *Coordinator) playback(course courseModels.Course, guid string) *Playback {
	creds := c.credentials(course)

	signingKey := c.cfg.SigningKey
	if course.APIKey != nil && *course.APIKey != "" {
		signingKey = *course.APIKey
	}

	expires := c.now().Add(c.cfg.TokenTTL).Unix()
	token := bunny.SignPlaybackToken(signingKey, guid, expires)

	return &Playback{
		LibraryID: creds.LibraryID,
		VideoID:   guid,
		Token:     token,
		Expires:   expires,
		IframeURL: bunny.EmbedURL(c.cfg.EmbedURL, creds.LibraryID, guid, token),
	}
}

// Create stores a pending record and registers it on the host. A host failure
// leaves the record failed and is returned to the caller.
func (c *Coordinator) Create(ctx context.Context, courseID, sectionID uint, in CreateInput) (courseModels.Video, error) {
	course, section, err := c.loadSection(ctx, courseID, sectionID)
	if err != nil {
		return courseModels.Video{}, err
	}
	db := c.db.WithContext(ctx)

	video := courseModels.Video{
		SectionID: section.ID,
		Title:     in.Title,
		Status:    courseModels.VideoPending,
		Duration:  in.Duration,
	}
	if in.OrderIndex != nil {
		video.OrderIndex = *in.OrderIndex
	}
	if err := db.Create(&video).Error; err != nil {
		return courseModels.Video{}, apperrors.Storage("create video", err)
	}

	log := c.log.WithFields(logrus.Fields{"video_id": video.ID, "course_id": course.ID})

	remote, err := c.providers(c.credentials(course)).CreateVideo(ctx, in.Title)
	if err == nil && remote.GUID == "" {
		err = &apperrors.ProviderError{Op: "create video", Message: "response did not include a video guid"}
	}
	if err != nil {
		log.WithError(err).Warn("remote video create failed")
		if saveErr := db.Model(&video).Update("status", courseModels.VideoFailed).Error; saveErr != nil {
			return video, apperrors.Storage("mark video failed", saveErr)
		}
		return video, err
	}

	guid := remote.GUID
	video.BunnyGUID = &guid
	video.Status = courseModels.VideoUploading
	updates := map[string]interface{}{
		"bunny_video_guid": guid,
		"status":           courseModels.VideoUploading,
	}
	if remote.Raw != nil {
		video.Meta = datatypes.JSON(remote.Raw)
		updates["meta"] = video.Meta
	}
	if err := db.Model(&video).Updates(updates).Error; err != nil {
		return video, apperrors.Storage("store video guid", err)
	}

	c.bestEffort(log, "refresh course total duration", func() error {
		return c.RefreshTotalDuration(ctx, course.ID)
	})

	return video, nil
}

// Upload streams the file to the host. Only videos already registered remotely can be uploaded.
func (c *Coordinator) Upload(ctx context.Context, courseID, sectionID, videoID uint, body io.Reader, size int64) (courseModels.Video, error) {
	course, _, video, err := c.loadVideo(ctx, courseID, sectionID, videoID)
	if err != nil {
		return courseModels.Video{}, err
	}
	if video.BunnyGUID == nil {
		return video, apperrors.Conflict("Video has not been created on the video host")
	}

	provider := c.providers(c.credentials(course))
	if err := provider.UploadBinary(ctx, *video.BunnyGUID, body, size); err != nil {
		c.log.WithError(err).WithField("video_id", video.ID).Warn("video upload failed")
		return video, err
	}

	video.Status = courseModels.VideoProcessing
	if err := c.db.WithContext(ctx).Model(&video).Update("status", video.Status).Error; err != nil {
		return video, apperrors.Storage("mark video processing", err)
	}
	return video, nil
}

// Update applies local edits, an optional remote patch and an optional status
// refresh. Nothing is saved when a host call fails.
func (c *Coordinator) Update(ctx context.Context, courseID, sectionID, videoID uint, in UpdateInput) (courseModels.Video, error) {
	course, _, video, err := c.loadVideo(ctx, courseID, sectionID, videoID)
	if err != nil {
		return courseModels.Video{}, err
	}

	durationChanged := false
	if in.Title != nil {
		video.Title = *in.Title
	}
	if in.OrderIndex != nil {
		video.OrderIndex = *in.OrderIndex
	}
	if in.Duration != nil {
		video.Duration = in.Duration
		durationChanged = true
	}

	if in.Remote != nil || in.RefreshStatus {
		if video.BunnyGUID == nil {
			return video, apperrors.Conflict("Video has not been created on the video host")
		}
		provider := c.providers(c.credentials(course))
		guid := *video.BunnyGUID

		if in.Remote != nil {
			raw, err := provider.UpdateVideo(ctx, guid, bunny.VideoUpdate{Title: in.Remote.Title, IsPublic: in.Remote.IsPublic})
			if err != nil {
				return video, err
			}
			if in.Remote.Title != nil {
				video.Title = *in.Remote.Title
			}
			if raw != nil {
				video.Meta = datatypes.JSON(raw)
			}
		}

		if in.RefreshStatus {
			remote, err := provider.GetVideo(ctx, guid)
			if err != nil {
				return video, err
			}
			applyRemoteStatus(&video, remote)
			if remote.IsReady() {
				durationChanged = true
			}
		}
	}

	err = c.db.WithContext(ctx).Model(&video).Select("title", "order_index", "duration", "status", "meta", "updated_at").Updates(&video).Error
	if err != nil {
		return video, apperrors.Storage("update video", err)
	}

	if durationChanged {
		c.bestEffort(c.log.WithField("video_id", video.ID), "refresh course total duration", func() error {
			return c.RefreshTotalDuration(ctx, course.ID)
		})
	}
	return video, nil
}

// applyRemoteStatus maps the host status onto the local lifecycle.
func applyRemoteStatus(video *courseModels.Video, remote bunny.RemoteVideo) {
	if remote.IsReady() {
		video.Status = courseModels.VideoReady
		if remote.Length != nil {
			length := *remote.Length
			video.Duration = &length
		}
	} else {
		video.Status = courseModels.VideoProcessing
	}
	if remote.Raw != nil {
		video.Meta = datatypes.JSON(remote.Raw)
	}
}

// Delete removes the remote video when there is one and always removes the local row.
func (c *Coordinator) Delete(ctx context.Context, courseID, sectionID, videoID uint) error {
	course, _, video, err := c.loadVideo(ctx, courseID, sectionID, videoID)
	if err != nil {
		return err
	}
	log := c.log.WithField("video_id", video.ID)

	if video.BunnyGUID != nil {
		guid := *video.BunnyGUID
		c.bestEffort(log, "remote video delete", func() error {
			return c.providers(c.credentials(course)).DeleteVideo(ctx, guid)
		})
	}

	if err := c.db.WithContext(ctx).Delete(&video).Error; err != nil {
		return apperrors.Storage("delete video", err)
	}

	c.bestEffort(log, "refresh course total duration", func() error {
		return c.RefreshTotalDuration(ctx, course.ID)
	})
	return nil
}

// Reorder sets order_index for videos of one section atomically.
func (c *Coordinator) Reorder(ctx context.Context, courseID, sectionID uint, items []OrderItem) error {
	if _, _, err := c.loadSection(ctx, courseID, sectionID); err != nil {
		return err
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&courseModels.Video{}).
				Where("id = ? AND course_section_id = ?", item.ID, sectionID).
				Update("order_index", item.OrderIndex)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.NotFound("Video")
			}
		}
		return nil
	})
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return err
		}
		return apperrors.Storage("reorder videos", err)
	}
	return nil
}

// RefreshTotalDuration caches the sum of known video durations on the course.
func (c *Coordinator) RefreshTotalDuration(ctx context.Context, courseID uint) error {
	db := c.db.WithContext(ctx)

	var total int64
	err := db.Model(&courseModels.Video{}).
		Select("COALESCE(SUM(videos.duration), 0)").
		Joins("JOIN course_sections ON course_sections.id = videos.course_section_id").
		Where("course_sections.course_id = ? AND course_sections.deleted_at IS NULL", courseID).
		Scan(&total).Error
	if err != nil {
		return err
	}

	return db.Model(&courseModels.Course{}).Where("id = ?", courseID).Update("total_duration", total).Error
}

func (c *Coordinator) bestEffort(log logrus.FieldLogger, what string, fn func() error) {
	if err := fn(); err != nil {
		log.WithError(err).Warnf("%s failed", what)
	}
}

func (c *Coordinator) credentials(course courseModels.Course) bunny.Credentials {
	return bunny.ResolveCredentials(course.LibraryID, course.APIKey, c.cfg.Defaults)
}

func (c *Coordinator) loadSection(ctx context.Context, courseID, sectionID uint) (courseModels.Course, courseModels.Section, error) {
	db := c.db.WithContext(ctx)

	var course courseModels.Course
	if err := db.First(&course, courseID).Error; err != nil {
		return course, courseModels.Section{}, notFoundOr(err, "Course")
	}

	var section courseModels.Section
	if err := db.Where("course_id = ?", courseID).First(&section, sectionID).Error; err != nil {
		return course, section, notFoundOr(err, "Section")
	}
	return course, section, nil
}

func (c *Coordinator) loadVideo(ctx context.Context, courseID, sectionID, videoID uint) (courseModels.Course, courseModels.Section, courseModels.Video, error) {
	course, section, err := c.loadSection(ctx, courseID, sectionID)
	if err != nil {
		return course, section, courseModels.Video{}, err
	}

	var video courseModels.Video
	err = c.db.WithContext(ctx).Where("course_section_id = ?", sectionID).First(&video, videoID).Error
	if err != nil {
		return course, section, video, notFoundOr(err, "Video")
	}
	return course, section, video, nil
}

func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity)
	}
	return apperrors.Storage("load "+entity, err)
}
