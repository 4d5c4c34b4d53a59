package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/vidtube/vidtube-server/users"
)

var columns = []string{"id", "username", "email", "full_name", "avatar", "cover_image",
	"password_hash", "refresh_token", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewRepo(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users\s*\(username,\s*email,\s*full_name,\s*avatar,\s*cover_image,\s*password_hash\).*RETURNING\s+id,\s*created_at,\s*updated_at`).
		WithArgs("alice", "alice@example.com", "Alice", "https://cdn/a.png", "", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u-1", now, now))

	u := &users.User{Username: " Alice", Email: "ALICE@example.com", FullName: "Alice", Avatar: "https://cdn/a.png", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	require.Equal(t, "u-1", u.ID)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, now, u.CreatedAt)
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &users.User{Username: "alice", Email: "alice@example.com"})
	require.ErrorIs(t, err, users.ErrAlreadyExists)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "alice", "alice@example.com", "Alice", "a.png", "", "hash", "rt", now, now))

	u, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "rt", u.RefreshToken)
}

func TestGetByID_NullRefreshToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "alice", "alice@example.com", "Alice", "a.png", "", "hash", nil, now, now))

	u, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.Empty(t, u.RefreshToken)
}

func TestGetByUsernameOrEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+username\s*=\s*\$1\s+OR\s+email\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsernameOrEmail(context.Background(), "Ghost")
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestGetByUsernameOrEmail_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+username`).
		WithArgs("alice").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByUsernameOrEmail(context.Background(), "alice")
	require.ErrorContains(t, err, "db error: db down")
}

func TestExistsByUsernameOrEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsernameOrEmail(context.Background(), "alice", "Alice@Example.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestUpdateAccount(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET.*RETURNING`).
		WithArgs("u-1", "Alice B", "", "", "").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "alice", "alice@example.com", "Alice B", "a.png", "", "hash", nil, now, now))

	u, err := repo.UpdateAccount(context.Background(), "u-1", users.AccountUpdate{FullName: "Alice B"})
	require.NoError(t, err)
	require.Equal(t, "Alice B", u.FullName)
}

func TestSetRefreshToken_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+refresh_token\s*=\s*NULLIF\(\$2,\s*''\)\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("ghost", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.SetRefreshToken(context.Background(), "ghost", ""), users.ErrNotFound)
}

func TestSwapRefreshToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `UPDATE\s+users\s+SET\s+refresh_token\s*=\s*NULLIF\(\$3,\s*''\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+refresh_token\s*=\s*\$2`

	mock.ExpectExec(q).WithArgs("u-1", "old", "new").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u-1", "old", "newer").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.SwapRefreshToken(ctx, "u-1", "old", "new"))
	require.ErrorIs(t, repo.SwapRefreshToken(ctx, "u-1", "old", "newer"), users.ErrRefreshTokenMismatch)
	require.ErrorIs(t, repo.SwapRefreshToken(ctx, "u-1", "", "newer"), users.ErrRefreshTokenMismatch)
}

func TestSetPasswordHash_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+password_hash`).
		WithArgs("u-1", "hash").
		WillReturnError(errors.New("db down"))

	require.ErrorContains(t, repo.SetPasswordHash(context.Background(), "u-1", "hash"), "db down")
}
