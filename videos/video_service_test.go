package videos_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/media"
	"github.com/vidtube/vidtube-server/videos"
	fakevideorepo "github.com/vidtube/vidtube-server/videos/repofake"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type failingVideoRepo struct {
	err error
}

func (r failingVideoRepo) Create(context.Context, *videos.Video) error { return r.err }

func (r failingVideoRepo) GetByID(context.Context, string) (*videos.Video, error) {
	return nil, r.err
}

type prefixFailingUploader struct {
	*media.MemoryUploader
	prefix string
}

func (u prefixFailingUploader) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if strings.HasPrefix(key, u.prefix) {
		return "", errors.New("bucket unavailable")
	}
	return u.MemoryUploader.Upload(ctx, key, body, size, contentType)
}

func file(name, contentType, content string) *media.File {
	return &media.File{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(content)),
		Body:        strings.NewReader(content),
	}
}

func publishInput(owner string) videos.PublishInput {
	return videos.PublishInput{
		OwnerID:     owner,
		Title:       "First upload",
		Description: "hello world",
		Duration:    12.5,
		VideoFile:   file("clip.mp4", "video/mp4", "mp4-bytes"),
		Thumbnail:   file("thumb.png", "image/png", "png-bytes"),
	}
}

func newService(t *testing.T, repo videos.VideoRepo, uploader media.Uploader) *videos.VideoService {
	t.Helper()
	vs, err := videos.NewVideoService(repo, uploader, videos.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return vs
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperrors.KindOf(err), "got %v", err)
}

func TestNewVideoService_RequiresDependencies(t *testing.T) {
	_, err := videos.NewVideoService(nil, media.NewMemoryUploader(""))
	require.Error(t, err)
	_, err = videos.NewVideoService(fakevideorepo.NewFakeVideoRepo(), nil)
	require.Error(t, err)
}

func TestPublish_StoresVideoAndUploads(t *testing.T) {
	repo := fakevideorepo.NewFakeVideoRepo()
	uploader := media.NewMemoryUploader("https://cdn.test")
	vs := newService(t, repo, uploader)
	owner := uuid.NewString()

	video, err := vs.Publish(context.Background(), publishInput(owner))
	require.NoError(t, err)
	require.NotEmpty(t, video.ID)
	require.Equal(t, owner, video.Owner)
	require.True(t, video.IsPublished)
	require.Equal(t, 12.5, video.Duration)
	require.True(t, strings.HasPrefix(video.VideoFile, "https://cdn.test/videos/2025/3/1/"), video.VideoFile)
	require.True(t, strings.HasSuffix(video.VideoFile, ".mp4"), video.VideoFile)
	require.True(t, strings.HasPrefix(video.Thumbnail, "https://cdn.test/thumbnails/2025/3/1/"), video.Thumbnail)
	require.Equal(t, 2, uploader.Len())

	stored, err := vs.GetByID(context.Background(), video.ID)
	require.NoError(t, err)
	require.Equal(t, video.Title, stored.Title)
}

func TestPublish_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*videos.PublishInput)
		message string
	}{
		{"blank title", func(in *videos.PublishInput) { in.Title = "  " }, "title and description are required"},
		{"blank description", func(in *videos.PublishInput) { in.Description = "" }, "title and description are required"},
		{"negative duration", func(in *videos.PublishInput) { in.Duration = -1 }, ""},
		{"missing video", func(in *videos.PublishInput) { in.VideoFile = nil }, "video file is required"},
		{"missing thumbnail", func(in *videos.PublishInput) { in.Thumbnail = &media.File{Filename: "t.png"} }, "thumbnail is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := media.NewMemoryUploader("")
			repo := fakevideorepo.NewFakeVideoRepo()
			vs := newService(t, repo, uploader)

			in := publishInput(uuid.NewString())
			tt.mutate(&in)
			_, err := vs.Publish(context.Background(), in)
			requireKind(t, err, apperrors.KindBadRequest)
			if tt.message != "" {
				require.Equal(t, tt.message, apperrors.Message(err))
			}
			require.Zero(t, uploader.Len())
			require.Zero(t, repo.Len())
		})
	}
}

func TestPublish_ThumbnailFailureDiscardsVideo(t *testing.T) {
	uploader := prefixFailingUploader{MemoryUploader: media.NewMemoryUploader(""), prefix: "thumbnails/"}
	vs := newService(t, fakevideorepo.NewFakeVideoRepo(), uploader)

	_, err := vs.Publish(context.Background(), publishInput(uuid.NewString()))
	requireKind(t, err, apperrors.KindPersistenceFailure)
	require.Zero(t, uploader.Len())
}

func TestPublish_UnknownOwnerDiscardsUploads(t *testing.T) {
	uploader := media.NewMemoryUploader("")
	vs := newService(t, failingVideoRepo{err: videos.ErrOwnerNotFound}, uploader)

	_, err := vs.Publish(context.Background(), publishInput(uuid.NewString()))
	requireKind(t, err, apperrors.KindNotFound)
	require.Equal(t, "user does not exist", apperrors.Message(err))
	require.Zero(t, uploader.Len())
}

func TestPublish_RepoFailure(t *testing.T) {
	uploader := media.NewMemoryUploader("")
	vs := newService(t, failingVideoRepo{err: errors.New("connection reset")}, uploader)

	_, err := vs.Publish(context.Background(), publishInput(uuid.NewString()))
	requireKind(t, err, apperrors.KindPersistenceFailure)
	require.Zero(t, uploader.Len())
}

func TestGetByID(t *testing.T) {
	vs := newService(t, fakevideorepo.NewFakeVideoRepo(), media.NewMemoryUploader(""))

	_, err := vs.GetByID(context.Background(), "not-a-uuid")
	requireKind(t, err, apperrors.KindBadRequest)
	require.Equal(t, "invalid videoId", apperrors.Message(err))

	_, err = vs.GetByID(context.Background(), uuid.NewString())
	requireKind(t, err, apperrors.KindNotFound)
	require.Equal(t, "video does not exist", apperrors.Message(err))

	failing := newService(t, failingVideoRepo{err: errors.New("timeout")}, media.NewMemoryUploader(""))
	_, err = failing.GetByID(context.Background(), uuid.NewString())
	requireKind(t, err, apperrors.KindPersistenceFailure)
}
