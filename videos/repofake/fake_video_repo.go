package fakevideorepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube-server/videos"
)

var _ videos.VideoRepo = (*FakeVideoRepo)(nil)

// FakeVideoRepo is an in-memory VideoRepo.
type FakeVideoRepo struct {
	videos  map[string]*videos.Video
	lock    sync.RWMutex
	nowFunc func() time.Time
}

func NewFakeVideoRepo() *FakeVideoRepo {
	return &FakeVideoRepo{
		videos:  make(map[string]*videos.Video),
		nowFunc: time.Now,
	}
}

func (vr *FakeVideoRepo) Create(_ context.Context, video *videos.Video) error {
	vr.lock.Lock()
	defer vr.lock.Unlock()

	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	now := vr.nowFunc()
	video.CreatedAt = now
	video.UpdatedAt = now

	stored := *video
	vr.videos[video.ID] = &stored
	return nil
}

func (vr *FakeVideoRepo) GetByID(_ context.Context, id string) (*videos.Video, error) {
	vr.lock.RLock()
	defer vr.lock.RUnlock()

	v, ok := vr.videos[id]
	if !ok {
		return nil, videos.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

// Len reports how many videos are stored.
func (vr *FakeVideoRepo) Len() int {
	vr.lock.RLock()
	defer vr.lock.RUnlock()
	return len(vr.videos)
}
