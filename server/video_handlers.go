package server

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/users"
	"github.com/vidtube/vidtube-server/videos"
)

const (
	maxVideoUploadSize = 256 << 20
	maxVideoFormMemory = 32 << 20
)

func (s *Server) PublishVideoHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, user *users.User) {
		r.Body = http.MaxBytesReader(w, r.Body, maxVideoUploadSize)
		if err := r.ParseMultipartForm(maxVideoFormMemory); err != nil {
			writeError(w, r, apperrors.Wrap(apperrors.KindBadRequest, "invalid multipart form", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		duration, err := formDuration(r.FormValue("duration"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		videoFile, closeVideo := formUpload(r, "videoFile")
		defer closeVideo()
		thumbnail, closeThumbnail := formUpload(r, "thumbnail")
		defer closeThumbnail()

		video, err := s.videos.Publish(r.Context(), videos.PublishInput{
			OwnerID:     user.ID,
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Duration:    duration,
			VideoFile:   videoFile,
			Thumbnail:   thumbnail,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, video, "Video published successfully")
	})
}

func (s *Server) GetVideoHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, _ *users.User) {
		video, err := s.videos.GetByID(r.Context(), r.PathValue("videoId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, video, "Video fetched successfully")
	})
}

// formDuration parses the optional duration field, in seconds.
func formDuration(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindBadRequest, "duration must be a number", err)
	}
	return d, nil
}
