// Package postgres stores users and their session state in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vidtube/vidtube-server/internal/database"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/users"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, full_name, avatar, cover_image, password_hash, refresh_token, created_at, updated_at`

var _ users.UserRepo = (*Repo)(nil)

// Repo implements users.UserRepo over database.DBTX.
type Repo struct {
	db database.DBTX
}

func NewRepo(db database.DBTX) *Repo {
	return &Repo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*users.User, error) {
	u := &users.User{}
	var refreshToken sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage,
		&u.PasswordHash, &refreshToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, err
	}
	u.RefreshToken = refreshToken.String
	return u, nil
}

func (r *Repo) Create(ctx context.Context, user *users.User) error {
	query := `
		INSERT INTO users (username, email, full_name, avatar, cover_image, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	user.Username = users.NormalizeLogin(user.Username)
	user.Email = users.NormalizeLogin(user.Email)

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.Avatar, user.CoverImage, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbError(err)
	}
	return u, nil
}

func (r *Repo) GetByUsernameOrEmail(ctx context.Context, login string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, users.NormalizeLogin(login)))
	if err != nil {
		return nil, dbError(err)
	}
	return u, nil
}

func (r *Repo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, users.NormalizeLogin(username), users.NormalizeLogin(email)).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrapf(err, "db error")
	}
	return exists, nil
}

func (r *Repo) UpdateAccount(ctx context.Context, id string, update users.AccountUpdate) (*users.User, error) {
	query := `
		UPDATE users SET
			full_name   = COALESCE(NULLIF($2, ''), full_name),
			email       = COALESCE(NULLIF($3, ''), email),
			avatar      = COALESCE(NULLIF($4, ''), avatar),
			cover_image = COALESCE(NULLIF($5, ''), cover_image),
			updated_at  = now()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		id, update.FullName, users.NormalizeLogin(update.Email), update.Avatar, update.CoverImage))
	if err != nil {
		return nil, dbError(err)
	}
	return u, nil
}

func (r *Repo) SetPasswordHash(ctx context.Context, id, hash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, users.ErrNotFound, query, id, hash)
}

func (r *Repo) SetRefreshToken(ctx context.Context, id, token string) error {
	query := `UPDATE users SET refresh_token = NULLIF($2, '') WHERE id = $1`
	return r.execOne(ctx, users.ErrNotFound, query, id, token)
}

// SwapRefreshToken is a single conditional UPDATE; zero affected rows means
// another writer already replaced current, or the user is gone.
func (r *Repo) SwapRefreshToken(ctx context.Context, id, current, next string) error {
	if current == "" {
		return users.ErrRefreshTokenMismatch
	}
	query := `UPDATE users SET refresh_token = NULLIF($3, '') WHERE id = $1 AND refresh_token = $2`
	return r.execOne(ctx, users.ErrRefreshTokenMismatch, query, id, current, next)
}

func (r *Repo) execOne(ctx context.Context, noRows error, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrapf(err, "db error")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrapf(err, "db error")
	}
	if n == 0 {
		return noRows
	}
	return nil
}

// dbError passes domain errors through, turns unique violations into
// users.ErrAlreadyExists and wraps everything else.
func dbError(err error) error {
	if apperrors.Is(err, users.ErrNotFound) {
		return err
	}
	var pgErr *pgconn.PgError
	if apperrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return users.ErrAlreadyExists
	}
	return apperrors.Wrapf(err, "db error")
}
