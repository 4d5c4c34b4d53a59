package videos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/internal/metrics"
	"github.com/vidtube/vidtube-server/internal/validation"
	"github.com/vidtube/vidtube-server/media"
)

const (
	videoPrefix     = "videos"
	thumbnailPrefix = "thumbnails"

	msgTitleRequired     = "title and description are required"
	msgVideoRequired     = "video file is required"
	msgThumbnailRequired = "thumbnail is required"
	msgInvalidVideoID    = "invalid videoId"
	msgVideoNotFound     = "video does not exist"
	msgPublishFailed     = "failed to publish video"
)

type PublishInput struct {
	OwnerID     string      `json:"-"`
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"required,max=5000"`
	Duration    float64     `json:"duration" validate:"min=0"`
	VideoFile   *media.File `json:"-"` // required
	Thumbnail   *media.File `json:"-"` // required
}

// VideoService publishes videos and looks them up.
type VideoService struct {
	videos   VideoRepo
	uploader media.Uploader
	nowTime  func() time.Time
}

// VideoServiceOption defines a function type to modify the VideoService instance.
type VideoServiceOption func(*VideoService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) VideoServiceOption {
	return func(vs *VideoService) {
		vs.nowTime = nowFunc
	}
}

func NewVideoService(videoRepo VideoRepo, uploader media.Uploader, options ...VideoServiceOption) (*VideoService, error) {
	if videoRepo == nil {
		return nil, errors.New("[NewVideoService] Videos repo is required")
	}
	if uploader == nil {
		return nil, errors.New("[NewVideoService] uploader is required")
	}

	vs := &VideoService{
		videos:   videoRepo,
		uploader: uploader,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(vs)
	}
	return vs, nil
}

// Publish uploads the video file and thumbnail and records a published video
// owned by in.OwnerID.
func (vs *VideoService) Publish(ctx context.Context, in PublishInput) (video *Video, err error) {
	defer func() { metrics.RecordVideoPublish(outcome(err)) }()

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" {
		return nil, apperrors.New(apperrors.KindBadRequest, msgTitleRequired)
	}
	if err := validation.ValidateStruct(in); err != nil {
		return nil, apperrors.Wrap(apperrors.KindBadRequest, err.Error(), err)
	}
	if in.VideoFile.Missing() {
		return nil, apperrors.New(apperrors.KindBadRequest, msgVideoRequired)
	}
	if in.Thumbnail.Missing() {
		return nil, apperrors.New(apperrors.KindBadRequest, msgThumbnailRequired)
	}

	videoObj, err := media.Store(ctx, vs.uploader, videoPrefix, in.VideoFile, vs.nowTime())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "failed to upload video file", errors.Wrap(err, "[VideoService.Publish] upload video"))
	}
	thumbObj, err := media.Store(ctx, vs.uploader, thumbnailPrefix, in.Thumbnail, vs.nowTime())
	if err != nil {
		media.Discard(ctx, vs.uploader, videoObj)
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "failed to upload thumbnail", errors.Wrap(err, "[VideoService.Publish] upload thumbnail"))
	}

	video = &Video{
		Owner:       in.OwnerID,
		VideoFile:   videoObj.URL,
		Thumbnail:   thumbObj.URL,
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		IsPublished: true,
	}
	if err := vs.videos.Create(ctx, video); err != nil {
		media.Discard(ctx, vs.uploader, videoObj, thumbObj)
		if errors.Is(err, ErrOwnerNotFound) {
			return nil, apperrors.Wrap(apperrors.KindNotFound, apperrors.ErrUserNotFound.Error(), err)
		}
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, msgPublishFailed, errors.Wrap(err, "[VideoService.Publish] Create"))
	}

	log.Info().Str("videoID", video.ID).Str("owner", video.Owner).Msg("video published")
	return video, nil
}

func (vs *VideoService) GetByID(ctx context.Context, id string) (*Video, error) {
	if !ValidID(id) {
		return nil, apperrors.New(apperrors.KindBadRequest, msgInvalidVideoID)
	}
	video, err := vs.videos.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.KindNotFound, msgVideoNotFound, err)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "failed to load video", errors.Wrap(err, "[VideoService.GetByID] GetByID"))
	}
	return video, nil
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	return apperrors.KindOf(err).String()
}
