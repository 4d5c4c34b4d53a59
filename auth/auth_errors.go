package auth

import (
	"fmt"

	"github.com/pkg/errors"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/token"
)

const (
	msgAllFieldsRequired = "all fields are required"
	msgAvatarRequired    = "avatar file is required"
	msgInvalidOldPass    = "invalid old password"
	msgTooManyAttempts   = "too many failed login attempts, try again later"
	msgSaveSession       = "failed to save session"
	msgLoadUser          = "failed to load user"
	msgRegisterFailed    = "something went wrong while registering the user"
)

func unauthenticated(message string, cause error) error {
	return apperrors.Wrap(apperrors.KindUnauthenticated, message, cause)
}

func invalidToken(message string, cause error) error {
	return apperrors.Wrap(apperrors.KindInvalidToken, message, cause)
}

func badRequest(message string) error {
	return apperrors.New(apperrors.KindBadRequest, message)
}

func conflict(message string, cause error) error {
	return apperrors.Wrap(apperrors.KindConflict, message, cause)
}

// persistenceFailure hides the store error from the caller but keeps it,
// tagged with where it happened, for the logs.
func persistenceFailure(message string, cause error, where string) error {
	return apperrors.Wrap(apperrors.KindPersistenceFailure, message, errors.Wrap(cause, where))
}

// tokenFailureMessage describes why the codec rejected a token.
func tokenFailureMessage(kind token.Kind, err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return fmt.Sprintf("%s token expired", kind)
	case errors.Is(err, token.ErrBadSignature):
		return fmt.Sprintf("invalid %s token signature", kind)
	default:
		return fmt.Sprintf("malformed %s token", kind)
	}
}
