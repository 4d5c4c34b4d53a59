package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/internal/validation"
)

const maxJSONBody = 1 << 20

// apiResponse is the envelope of every JSON response.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// writeError is the only place a failure kind becomes a status code.
// Server side failures keep their cause for the request log line, or are
// logged here when no LoggingMiddleware wraps w; the client only sees the
// classified message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.KindOf(err).StatusCode()
	if status >= http.StatusInternalServerError {
		if rec := recorderOf(w); rec != nil {
			rec.err = err
		} else {
			log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		}
	}
	writeJSON(w, status, nil, apperrors.Message(err))
}

// decodeJSON reads a JSON body into dst and validates it. An empty body is
// allowed when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst)
	switch {
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	case errors.Is(err, io.EOF):
		return apperrors.New(apperrors.KindBadRequest, "request body is required")
	case err != nil:
		return apperrors.Wrap(apperrors.KindBadRequest, "invalid JSON body", err)
	}

	if err := validation.ValidateStruct(dst); err != nil {
		return apperrors.Wrap(apperrors.KindBadRequest, err.Error(), err)
	}
	return nil
}
