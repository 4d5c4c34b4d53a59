// Package videos holds published videos: the record, its stores and the
// service that publishes and fetches them.
package videos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("video not found")
	ErrOwnerNotFound = errors.New("video owner does not exist")
)

// Video is an uploaded video and its thumbnail. The files themselves live in
// media storage; the record keeps their URLs.
type Video struct {
	ID          string    `json:"_id"`
	Owner       string    `json:"owner"` // id of the publishing user
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"` // seconds
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type VideoRepo interface {
	// Create stores video and fills in its id and timestamps.
	Create(ctx context.Context, video *Video) error
	GetByID(ctx context.Context, id string) (*Video, error)
}

// ValidID reports whether id is a well-formed video id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
