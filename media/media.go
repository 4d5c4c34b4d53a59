// Package media stores user-supplied files (avatars, cover images, videos
// and thumbnails) and returns the URL they are served from.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Uploader interface {
	// Upload stores body under key and returns its public URL.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// File is a file received from a client.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Missing reports whether no file was sent.
func (f *File) Missing() bool {
	return f == nil || f.Body == nil
}

// Object is a stored file.
type Object struct {
	Key string
	URL string
}

// ObjectKey builds a unique, date-partitioned key such as
// "avatars/2024/3/9/<uuid>.png".
func ObjectKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%d/%d/%v%s", prefix, now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

// Store uploads file under a fresh key below prefix.
func Store(ctx context.Context, u Uploader, prefix string, file *File, now time.Time) (Object, error) {
	key := ObjectKey(prefix, file.Filename, now)
	url, err := u.Upload(ctx, key, file.Body, file.Size, file.ContentType)
	if err != nil {
		return Object{}, err
	}
	return Object{Key: key, URL: url}, nil
}

// Discard deletes objects whose owning record was never written. Failures
// are logged and otherwise ignored.
func Discard(ctx context.Context, u Uploader, objects ...Object) {
	for _, o := range objects {
		if o.Key == "" {
			continue
		}
		if err := u.Delete(ctx, o.Key); err != nil {
			log.Warn().Err(err).Str("key", o.Key).Msg("failed to discard orphaned object")
		}
	}
}
