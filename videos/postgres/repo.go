// Package postgres stores videos in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vidtube/vidtube-server/internal/database"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/videos"
)

const (
	foreignKeyViolation = "23503"
	invalidTextRepr     = "22P02"
)

const videoColumns = `id, owner_id, video_file, thumbnail, title, description, duration, views, is_published, created_at, updated_at`

var _ videos.VideoRepo = (*Repo)(nil)

// Repo implements videos.VideoRepo over database.DBTX.
type Repo struct {
	db database.DBTX
}

func NewRepo(db database.DBTX) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, video *videos.Video) error {
	query := `
		INSERT INTO videos (owner_id, video_file, thumbnail, title, description, duration, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, views, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		video.Owner, video.VideoFile, video.Thumbnail, video.Title, video.Description, video.Duration, video.IsPublished,
	).Scan(&video.ID, &video.Views, &video.CreatedAt, &video.UpdatedAt)
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*videos.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	v := &videos.Video{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Owner, &v.VideoFile, &v.Thumbnail,
		&v.Title, &v.Description, &v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	if apperrors.Is(err, sql.ErrNoRows) {
		return nil, videos.ErrNotFound
	}
	if err != nil {
		return nil, dbError(err)
	}
	return v, nil
}

// dbError maps a missing owner to videos.ErrOwnerNotFound, an unparsable id
// to videos.ErrNotFound and wraps everything else.
func dbError(err error) error {
	var pgErr *pgconn.PgError
	if apperrors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolation:
			return videos.ErrOwnerNotFound
		case invalidTextRepr:
			return videos.ErrNotFound
		}
	}
	return apperrors.Wrapf(err, "db error")
}
