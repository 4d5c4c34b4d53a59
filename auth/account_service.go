package auth

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/internal/validation"
	"github.com/vidtube/vidtube-server/media"
	"github.com/vidtube/vidtube-server/users"
)

const (
	avatarPrefix     = "avatars"
	coverImagePrefix = "covers"
)

type RegisterInput struct {
	FullName   string      `json:"fullName" validate:"required"`
	Email      string      `json:"email" validate:"required,email"`
	Username   string      `json:"username" validate:"required"`
	Password   string      `json:"password" validate:"required"`
	Avatar     *media.File `json:"-"` // required
	CoverImage *media.File `json:"-"`
}

// AccountService manages the user record outside of the session lifecycle:
// registration, password changes and profile updates.
type AccountService struct {
	users    users.UserRepo
	uploader media.Uploader
	nowTime  func() time.Time
}

// AccountServiceOption defines a function type to modify the AccountService instance.
type AccountServiceOption func(*AccountService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AccountServiceOption {
	return func(as *AccountService) {
		as.nowTime = nowFunc
	}
}

func NewAccountService(userRepo users.UserRepo, uploader media.Uploader, options ...AccountServiceOption) (*AccountService, error) {
	if userRepo == nil {
		return nil, errors.New("[NewAccountService] Users repo is required")
	}
	if uploader == nil {
		return nil, errors.New("[NewAccountService] uploader is required")
	}

	as := &AccountService{
		users:    userRepo,
		uploader: uploader,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Register creates a user with an uploaded avatar and optional cover image.
func (as *AccountService) Register(ctx context.Context, in RegisterInput) (*users.User, error) {
	if anyBlank(in.FullName, in.Email, in.Username, in.Password) {
		return nil, badRequest(msgAllFieldsRequired)
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateStruct(in); err != nil {
		return nil, apperrors.Wrap(apperrors.KindBadRequest, err.Error(), err)
	}
	if err := users.ValidatePasswordStrength(in.Password); err != nil {
		return nil, badRequest(err.Error())
	}

	exists, err := as.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, persistenceFailure(msgRegisterFailed, err, "[AccountService.Register] ExistsByUsernameOrEmail")
	}
	if exists {
		return nil, conflict(users.ErrAlreadyExists.Error(), nil)
	}

	if in.Avatar.Missing() {
		return nil, badRequest(msgAvatarRequired)
	}
	hash, err := users.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, msgRegisterFailed, err)
	}

	avatar, err := media.Store(ctx, as.uploader, avatarPrefix, in.Avatar, as.nowTime())
	if err != nil {
		return nil, persistenceFailure("failed to upload avatar", err, "[AccountService.Register] upload avatar")
	}

	var cover media.Object
	if !in.CoverImage.Missing() {
		cover, err = media.Store(ctx, as.uploader, coverImagePrefix, in.CoverImage, as.nowTime())
		if err != nil {
			media.Discard(ctx, as.uploader, avatar)
			return nil, persistenceFailure("failed to upload cover image", err, "[AccountService.Register] upload cover image")
		}
	}

	user := &users.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		Avatar:       avatar.URL,
		CoverImage:   cover.URL,
		PasswordHash: hash,
	}
	err = as.users.Create(ctx, user)
	if err != nil {
		// The record was never written, so nothing references the uploads.
		media.Discard(ctx, as.uploader, avatar, cover)
	}
	if errors.Is(err, users.ErrAlreadyExists) {
		return nil, conflict(users.ErrAlreadyExists.Error(), err)
	}
	if err != nil {
		return nil, persistenceFailure(msgRegisterFailed, err, "[AccountService.Register] Create")
	}

	log.Info().Str("userID", user.ID).Str("username", user.Username).Msg("user registered")
	return user.Public(), nil
}

// ChangePassword replaces the password once the old one is confirmed.
func (as *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return badRequest(msgAllFieldsRequired)
	}

	user, err := as.loadUser(ctx, userID, "[AccountService.ChangePassword] GetByID")
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return badRequest(msgInvalidOldPass)
	}
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return badRequest(err.Error())
	}

	hash, err := users.HashPassword(newPassword)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, "failed to change password", err)
	}
	if err := as.users.SetPasswordHash(ctx, userID, hash); err != nil {
		return persistenceFailure("failed to change password", err, "[AccountService.ChangePassword] SetPasswordHash")
	}
	return nil
}

// UpdateAccount changes the display name and email; both are required.
func (as *AccountService) UpdateAccount(ctx context.Context, userID, fullName, email string) (*users.User, error) {
	if anyBlank(fullName, email) {
		return nil, badRequest(msgAllFieldsRequired)
	}
	return as.update(ctx, userID, users.AccountUpdate{
		FullName: strings.TrimSpace(fullName),
		Email:    strings.TrimSpace(email),
	}, "[AccountService.UpdateAccount] UpdateAccount")
}

func (as *AccountService) UpdateAvatar(ctx context.Context, userID string, file *media.File) (*users.User, error) {
	if file.Missing() {
		return nil, badRequest(msgAvatarRequired)
	}
	obj, err := media.Store(ctx, as.uploader, avatarPrefix, file, as.nowTime())
	if err != nil {
		return nil, persistenceFailure("failed to upload avatar", err, "[AccountService.UpdateAvatar] upload")
	}
	return as.replaceImage(ctx, userID, obj, users.AccountUpdate{Avatar: obj.URL}, "[AccountService.UpdateAvatar] UpdateAccount")
}

func (as *AccountService) UpdateCoverImage(ctx context.Context, userID string, file *media.File) (*users.User, error) {
	if file.Missing() {
		return nil, badRequest("cover image file is required")
	}
	obj, err := media.Store(ctx, as.uploader, coverImagePrefix, file, as.nowTime())
	if err != nil {
		return nil, persistenceFailure("failed to upload cover image", err, "[AccountService.UpdateCoverImage] upload")
	}
	return as.replaceImage(ctx, userID, obj, users.AccountUpdate{CoverImage: obj.URL}, "[AccountService.UpdateCoverImage] UpdateAccount")
}

// replaceImage points the user at a freshly stored image, discarding the
// upload when the record could not be changed.
func (as *AccountService) replaceImage(ctx context.Context, userID string, obj media.Object, update users.AccountUpdate, where string) (*users.User, error) {
	user, err := as.update(ctx, userID, update, where)
	if err != nil {
		media.Discard(ctx, as.uploader, obj)
		return nil, err
	}
	return user, nil
}

func (as *AccountService) update(ctx context.Context, userID string, update users.AccountUpdate, where string) (*users.User, error) {
	user, err := as.users.UpdateAccount(ctx, userID, update)
	switch {
	case errors.Is(err, users.ErrNotFound):
		return nil, apperrors.Wrap(apperrors.KindNotFound, apperrors.ErrUserNotFound.Error(), err)
	case errors.Is(err, users.ErrAlreadyExists):
		return nil, conflict(users.ErrAlreadyExists.Error(), err)
	case err != nil:
		return nil, persistenceFailure("failed to update account", err, where)
	}
	return user.Public(), nil
}

func (as *AccountService) loadUser(ctx context.Context, userID, where string) (*users.User, error) {
	user, err := as.users.GetByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.KindNotFound, apperrors.ErrUserNotFound.Error(), err)
	}
	if err != nil {
		return nil, persistenceFailure(msgLoadUser, err, where)
	}
	return user, nil
}

func anyBlank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}
