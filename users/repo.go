package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound             = errors.New("user not found")
	ErrAlreadyExists        = errors.New("user with email or username already exists")
	ErrRefreshTokenMismatch = errors.New("stored refresh token does not match")
)

// AccountUpdate carries the profile fields a user may change. Empty fields
// are left untouched.
type AccountUpdate struct {
	FullName   string
	Email      string
	Avatar     string
	CoverImage string
}

type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsernameOrEmail(ctx context.Context, login string) (*User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error

	// SetRefreshToken overwrites the stored refresh token; an empty token
	// ends the session.
	SetRefreshToken(ctx context.Context, id, token string) error

	// SwapRefreshToken replaces current with next in a single atomic step and
	// returns ErrRefreshTokenMismatch when the stored token is not current.
	SwapRefreshToken(ctx context.Context, id, current, next string) error
}
