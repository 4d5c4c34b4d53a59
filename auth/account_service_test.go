package auth_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vidtube/vidtube-server/auth"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/media"
	fakeuserrepo "github.com/vidtube/vidtube-server/users/repofake"
)

const mediaBaseURL = "https://cdn.example.com"

type failingUploader struct{}

func (failingUploader) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (failingUploader) Delete(context.Context, string) error {
	return errors.New("bucket unavailable")
}

// prefixFailingUploader rejects uploads below one prefix.
type prefixFailingUploader struct {
	*media.MemoryUploader
	prefix string
}

func (u prefixFailingUploader) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if strings.HasPrefix(key, u.prefix+"/") {
		return "", errors.New("bucket unavailable")
	}
	return u.MemoryUploader.Upload(ctx, key, body, size, contentType)
}

// racingUserRepo misses the duplicate on the existence check, as when a
// concurrent registration commits in between.
type racingUserRepo struct {
	*fakeuserrepo.FakeUserRepo
}

func (racingUserRepo) ExistsByUsernameOrEmail(context.Context, string, string) (bool, error) {
	return false, nil
}

func setupAccountService(t *testing.T) (*auth.AccountService, *fakeuserrepo.FakeUserRepo, *media.MemoryUploader) {
	t.Helper()
	repo := fakeuserrepo.NewFakeUserRepo()
	uploader := media.NewMemoryUploader(mediaBaseURL)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	service, err := auth.NewAccountService(repo, uploader, auth.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)
	return service, repo, uploader
}

func upload(name, content string) *media.File {
	return &media.File{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(content)),
		Body:        strings.NewReader(content),
	}
}

func registerInput() auth.RegisterInput {
	return auth.RegisterInput{
		FullName: "Alice Example",
		Email:    testEmail,
		Username: testUsername,
		Password: testPassword,
		Avatar:   upload("me.png", "avatar-bytes"),
	}
}

func TestRegister(t *testing.T) {
	service, repo, uploader := setupAccountService(t)
	ctx := context.Background()

	in := registerInput()
	in.CoverImage = upload("cover.png", "cover-bytes")
	u, err := service.Register(ctx, in)
	require.NoError(t, err)

	require.NotEmpty(t, u.ID)
	require.Empty(t, u.PasswordHash)
	require.True(t, strings.HasPrefix(u.Avatar, mediaBaseURL+"/avatars/2026/3/14/"))
	require.True(t, strings.HasPrefix(u.CoverImage, mediaBaseURL+"/covers/2026/3/14/"))
	require.Equal(t, 2, uploader.Len())

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, stored.CheckPassword(testPassword))
}

func TestRegister_Failures(t *testing.T) {
	service, _, _ := setupAccountService(t)
	ctx := context.Background()

	in := registerInput()
	in.FullName = "   "
	_, err := service.Register(ctx, in)
	requireKind(t, err, apperrors.KindBadRequest)
	require.Equal(t, "all fields are required", apperrors.Message(err))

	in = registerInput()
	in.Password = "weak"
	_, err = service.Register(ctx, in)
	requireKind(t, err, apperrors.KindBadRequest)

	in = registerInput()
	in.Avatar = nil
	_, err = service.Register(ctx, in)
	requireKind(t, err, apperrors.KindBadRequest)
	require.Equal(t, "avatar file is required", apperrors.Message(err))

	_, err = service.Register(ctx, registerInput())
	require.NoError(t, err)

	in = registerInput()
	in.Email = "other@example.com"
	_, err = service.Register(ctx, in)
	requireKind(t, err, apperrors.KindConflict)
	require.Equal(t, "user with email or username already exists", apperrors.Message(err))
}

func TestRegister_UploadFailure(t *testing.T) {
	service, err := auth.NewAccountService(fakeuserrepo.NewFakeUserRepo(), failingUploader{})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), registerInput())
	requireKind(t, err, apperrors.KindPersistenceFailure)
}

func TestRegister_InvalidEmail(t *testing.T) {
	service, _, uploader := setupAccountService(t)

	in := registerInput()
	in.Email = "not-an-email"
	_, err := service.Register(context.Background(), in)
	requireKind(t, err, apperrors.KindBadRequest)
	require.Equal(t, "email must be a valid email address", apperrors.Message(err))
	require.Zero(t, uploader.Len())
}

func TestRegister_LostUniquenessRaceDiscardsUploads(t *testing.T) {
	repo := racingUserRepo{fakeuserrepo.NewFakeUserRepo()}
	uploader := media.NewMemoryUploader(mediaBaseURL)
	service, err := auth.NewAccountService(repo, uploader)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = service.Register(ctx, registerInput())
	require.NoError(t, err)
	require.Equal(t, 1, uploader.Len())

	in := registerInput()
	in.CoverImage = upload("cover.png", "cover-bytes")
	_, err = service.Register(ctx, in)
	requireKind(t, err, apperrors.KindConflict)
	require.Equal(t, 1, uploader.Len())
}

func TestRegister_CoverUploadFailureDiscardsAvatar(t *testing.T) {
	memory := media.NewMemoryUploader(mediaBaseURL)
	service, err := auth.NewAccountService(fakeuserrepo.NewFakeUserRepo(), prefixFailingUploader{memory, "covers"})
	require.NoError(t, err)

	in := registerInput()
	in.CoverImage = upload("cover.png", "cover-bytes")
	_, err = service.Register(context.Background(), in)
	requireKind(t, err, apperrors.KindPersistenceFailure)
	require.Zero(t, memory.Len())
}

func TestUpdateAvatar_UnknownUserDiscardsUpload(t *testing.T) {
	service, _, uploader := setupAccountService(t)

	_, err := service.UpdateAvatar(context.Background(), "missing", upload("a.png", "a"))
	requireKind(t, err, apperrors.KindNotFound)
	require.Zero(t, uploader.Len())
}

func TestChangePassword(t *testing.T) {
	service, repo, _ := setupAccountService(t)
	ctx := context.Background()

	u, err := service.Register(ctx, registerInput())
	require.NoError(t, err)

	err = service.ChangePassword(ctx, u.ID, "Wrong1234", "NewSecret456")
	requireKind(t, err, apperrors.KindBadRequest)
	require.Equal(t, "invalid old password", apperrors.Message(err))

	err = service.ChangePassword(ctx, u.ID, testPassword, "short")
	requireKind(t, err, apperrors.KindBadRequest)

	require.NoError(t, service.ChangePassword(ctx, u.ID, testPassword, "NewSecret456"))
	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, stored.CheckPassword("NewSecret456"))
	require.False(t, stored.CheckPassword(testPassword))

	err = service.ChangePassword(ctx, "missing", testPassword, "NewSecret456")
	requireKind(t, err, apperrors.KindNotFound)
}

func TestUpdateAccount(t *testing.T) {
	service, _, _ := setupAccountService(t)
	ctx := context.Background()

	u, err := service.Register(ctx, registerInput())
	require.NoError(t, err)

	updated, err := service.UpdateAccount(ctx, u.ID, "Alice B", "alice.b@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice B", updated.FullName)
	require.Equal(t, "alice.b@example.com", updated.Email)

	_, err = service.UpdateAccount(ctx, u.ID, "", "alice.b@example.com")
	requireKind(t, err, apperrors.KindBadRequest)

	other := registerInput()
	other.Username = "bob"
	other.Email = "bob@example.com"
	_, err = service.Register(ctx, other)
	require.NoError(t, err)

	_, err = service.UpdateAccount(ctx, u.ID, "Alice B", "bob@example.com")
	requireKind(t, err, apperrors.KindConflict)
}

func TestUpdateAvatarAndCoverImage(t *testing.T) {
	service, _, uploader := setupAccountService(t)
	ctx := context.Background()

	u, err := service.Register(ctx, registerInput())
	require.NoError(t, err)

	updated, err := service.UpdateAvatar(ctx, u.ID, upload("new.png", "new-avatar"))
	require.NoError(t, err)
	require.NotEqual(t, u.Avatar, updated.Avatar)

	updated, err = service.UpdateCoverImage(ctx, u.ID, upload("cover.jpg", "cover"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(updated.CoverImage, ".jpg"))
	require.Equal(t, 3, uploader.Len())

	_, err = service.UpdateAvatar(ctx, u.ID, nil)
	requireKind(t, err, apperrors.KindBadRequest)

	_, err = service.UpdateCoverImage(ctx, "missing", upload("c.png", "c"))
	requireKind(t, err, apperrors.KindNotFound)
}
