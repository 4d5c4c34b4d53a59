package server

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vidtube/vidtube-server/auth"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/media"
	"github.com/vidtube/vidtube-server/users"
)

const maxUploadSize = 10 << 20

type loginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// sessionResponse is the payload of login and refresh.
type sessionResponse struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, r, apperrors.Wrap(apperrors.KindBadRequest, "invalid multipart form", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		avatar, closeAvatar := formUpload(r, "avatar")
		defer closeAvatar()
		cover, closeCover := formUpload(r, "coverImage")
		defer closeCover()

		user, err := s.accounts.Register(r.Context(), auth.RegisterInput{
			FullName:   r.FormValue("fullName"),
			Email:      r.FormValue("email"),
			Username:   r.FormValue("username"),
			Password:   r.FormValue("password"),
			Avatar:     avatar,
			CoverImage: cover,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, user, "User registered successfully")
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, r, err)
			return
		}

		session, err := s.sessions.Login(r.Context(), auth.Credentials{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.writeSession(w, session, "User logged in successfully")
	}
}

// RefreshTokenHandler rotates the refresh token taken from the refreshToken
// cookie or, for non-browser clients, from the JSON body.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var presented string
		if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
			presented = cookie.Value
		}
		if presented == "" {
			var req refreshRequest
			if err := decodeJSON(r, &req, true); err != nil {
				writeError(w, r, err)
				return
			}
			presented = req.RefreshToken
		}

		session, err := s.sessions.Refresh(r.Context(), presented)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.writeSession(w, session, "Access token refreshed")
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, user *users.User) {
		if err := s.sessions.Logout(r.Context(), user.ID); err != nil {
			writeError(w, r, err)
			return
		}
		clearTokenCookies(w)
		writeJSON(w, http.StatusOK, struct{}{}, "User logged out")
	})
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, user *users.User) {
		var req changePasswordRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.accounts.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct{}{}, "Password changed successfully")
	})
}

func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, user *users.User) {
		writeJSON(w, http.StatusOK, user, "Current user fetched successfully")
	})
}

func (s *Server) UpdateAccountHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, user *users.User) {
		var req updateAccountRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := s.accounts.UpdateAccount(r.Context(), user.ID, req.FullName, req.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated, "Account details updated successfully")
	})
}

func (s *Server) UpdateAvatarHandler() http.HandlerFunc {
	return s.imageUpdateHandler("avatar", s.accounts.UpdateAvatar, "Avatar updated successfully")
}

func (s *Server) UpdateCoverImageHandler() http.HandlerFunc {
	return s.imageUpdateHandler("coverImage", s.accounts.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdater func(ctx context.Context, userID string, file *media.File) (*users.User, error)

func (s *Server) imageUpdateHandler(field string, update imageUpdater, message string) http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, user *users.User) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, r, apperrors.Wrap(apperrors.KindBadRequest, "invalid multipart form", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, closeFile := formUpload(r, field)
		defer closeFile()

		updated, err := update(r.Context(), user.ID, file)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated, message)
	})
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, p := range s.health {
			if err := p.PingContext(ctx); err != nil {
				log.Warn().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, "service unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
	}
}

// MediaHandler serves uploads kept in process memory.
func (s *Server) MediaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.media.Object(r.PathValue("key"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(body))
		_, _ = w.Write(body)
	}
}

// withUser adapts a handler that needs the user attached by RequireAuth.
func (s *Server) withUser(handler func(http.ResponseWriter, *http.Request, *users.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, r, apperrors.New(apperrors.KindUnauthenticated, apperrors.ErrUnauthorizedRequest.Error()))
			return
		}
		handler(w, r, user)
	}
}

func (s *Server) writeSession(w http.ResponseWriter, session *auth.Session, message string) {
	setTokenCookies(w, session.Tokens, time.Now())
	writeJSON(w, http.StatusOK, sessionResponse{
		User:         session.User,
		AccessToken:  session.Tokens.Access.Value,
		RefreshToken: session.Tokens.Refresh.Value,
	}, message)
}

// formUpload returns the named file of a parsed multipart form, or nil when
// it was not sent. The returned func closes the file.
func formUpload(r *http.Request, field string) (*media.File, func()) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, func() {}
	}
	return &media.File{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Size:        header.Size,
		Body:        file,
	}, func() { _ = file.Close() }
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
