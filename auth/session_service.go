package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/internal/limiter"
	"github.com/vidtube/vidtube-server/internal/metrics"
	"github.com/vidtube/vidtube-server/token"
	"github.com/vidtube/vidtube-server/users"
)

// SessionStore is the part of the user store the session lifecycle needs.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
	GetByUsernameOrEmail(ctx context.Context, login string) (*users.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	SwapRefreshToken(ctx context.Context, id, current, next string) error
}

// LoginLimiter throttles repeated failed logins for one identifier.
type LoginLimiter interface {
	Allow(ctx context.Context, identifier string) error
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

// Session is the result of a login or a rotation.
type Session struct {
	User   *users.User // public view
	Tokens token.Pair
}

// SessionService issues, rotates, revokes and checks user sessions.
type SessionService struct {
	store   SessionStore
	tokens  *token.Manager
	limiter LoginLimiter
}

// SessionServiceOption defines a function type to modify the SessionService instance.
type SessionServiceOption func(*SessionService)

// WithLoginLimiter throttles failed logins. Without it logins are not limited.
func WithLoginLimiter(l LoginLimiter) SessionServiceOption {
	return func(s *SessionService) {
		s.limiter = l
	}
}

func NewSessionService(store SessionStore, tokens *token.Manager, options ...SessionServiceOption) (*SessionService, error) {
	if store == nil {
		return nil, errors.New("[NewSessionService] session store is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewSessionService] token manager is required")
	}

	s := &SessionService{
		store:  store,
		tokens: tokens,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Credentials identify a user by username, email or both. When both are
// given the username is tried first and the email second.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// logins returns the distinct normalised identifiers to look up, in order.
func (c Credentials) logins() []string {
	var out []string
	for _, l := range []string{c.Username, c.Email} {
		l = users.NormalizeLogin(l)
		if l != "" && (len(out) == 0 || out[0] != l) {
			out = append(out, l)
		}
	}
	return out
}

// Login checks the password of the user identified by username or email and
// starts a new session, replacing any refresh token issued before.
func (s *SessionService) Login(ctx context.Context, creds Credentials) (session *Session, err error) {
	defer func() { metrics.RecordLogin(outcome(err)) }()

	logins := creds.logins()
	if len(logins) == 0 || creds.Password == "" {
		return nil, badRequest("username or email and password are required")
	}

	for _, login := range logins {
		if err := s.checkLimiter(ctx, login); err != nil {
			return nil, err
		}
	}

	user, err := s.findUser(ctx, logins)
	if errors.Is(err, users.ErrNotFound) {
		s.recordFailure(ctx, logins)
		return nil, apperrors.New(apperrors.KindNotFound, apperrors.ErrUserNotFound.Error())
	}
	if err != nil {
		return nil, persistenceFailure(msgLoadUser, err, "[SessionService.Login] GetByUsernameOrEmail")
	}

	if !user.CheckPassword(creds.Password) {
		s.recordFailure(ctx, logins)
		return nil, apperrors.New(apperrors.KindInvalidCredentials, apperrors.ErrInvalidCredentials.Error())
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, "failed to issue tokens", err)
	}
	if err := s.store.SetRefreshToken(ctx, user.ID, pair.Refresh.Value); err != nil {
		return nil, persistenceFailure(msgSaveSession, err, "[SessionService.Login] SetRefreshToken")
	}

	s.resetLimiter(ctx, logins)
	log.Info().Str("userID", user.ID).Msg("user logged in")
	return &Session{User: user.Public(), Tokens: pair}, nil
}

// Refresh exchanges the presented refresh token for a new pair. Only the
// refresh token most recently issued for the user is honoured; any other
// token that still verifies is treated as replayed.
func (s *SessionService) Refresh(ctx context.Context, presented string) (session *Session, err error) {
	defer func() { metrics.RecordRefresh(outcome(err)) }()

	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, unauthenticated(apperrors.ErrUnauthorizedRequest.Error(), nil)
	}

	userID, err := s.tokens.VerifyRefresh(presented)
	if err != nil {
		return nil, invalidToken(tokenFailureMessage(token.Refresh, err), err)
	}

	user, err := s.store.GetByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, invalidToken(apperrors.ErrInvalidRefreshToken.Error(), err)
	}
	if err != nil {
		return nil, persistenceFailure(msgLoadUser, err, "[SessionService.Refresh] GetByID")
	}

	if !sameToken(presented, user.RefreshToken) {
		log.Warn().Str("userID", user.ID).Msg("stale refresh token presented")
		return nil, apperrors.New(apperrors.KindTokenReused, apperrors.ErrRefreshTokenReused.Error())
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, "failed to issue tokens", err)
	}

	// The swap only succeeds if nobody rotated since the comparison above.
	err = s.store.SwapRefreshToken(ctx, user.ID, presented, pair.Refresh.Value)
	switch {
	case errors.Is(err, users.ErrRefreshTokenMismatch):
		log.Warn().Str("userID", user.ID).Msg("refresh token rotated concurrently")
		return nil, apperrors.Wrap(apperrors.KindTokenReused, apperrors.ErrRefreshTokenReused.Error(), err)
	case errors.Is(err, users.ErrNotFound):
		return nil, invalidToken(apperrors.ErrInvalidRefreshToken.Error(), err)
	case err != nil:
		return nil, persistenceFailure(msgSaveSession, err, "[SessionService.Refresh] SwapRefreshToken")
	}

	return &Session{User: user.Public(), Tokens: pair}, nil
}

// Logout ends the user's session server side. Copies of the refresh token the
// client may keep stop working immediately.
func (s *SessionService) Logout(ctx context.Context, userID string) (err error) {
	defer func() { metrics.RecordLogout(outcome(err)) }()

	err = s.store.SetRefreshToken(ctx, userID, "")
	if errors.Is(err, users.ErrNotFound) {
		return unauthenticated(apperrors.ErrInvalidAccessToken.Error(), err)
	}
	if err != nil {
		return persistenceFailure("failed to end session", err, "[SessionService.Logout] SetRefreshToken")
	}
	log.Info().Str("userID", userID).Msg("user logged out")
	return nil
}

// Authenticate resolves an access token to the user it was issued for. The
// stored refresh token is never consulted.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*users.User, error) {
	if accessToken == "" {
		return nil, unauthenticated(apperrors.ErrUnauthorizedRequest.Error(), nil)
	}

	userID, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, unauthenticated(tokenFailureMessage(token.Access, err), err)
	}

	user, err := s.store.GetByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, unauthenticated(apperrors.ErrInvalidAccessToken.Error(), err)
	}
	if err != nil {
		return nil, persistenceFailure(msgLoadUser, err, "[SessionService.Authenticate] GetByID")
	}
	return user.Public(), nil
}

// sameToken compares in constant time; an empty stored token never matches.
func sameToken(presented, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}

// checkLimiter fails open when the limiter backend is unavailable.
func (s *SessionService) checkLimiter(ctx context.Context, login string) error {
	if s.limiter == nil {
		return nil
	}
	err := s.limiter.Allow(ctx, login)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, limiter.ErrLoginRateLimited):
		return apperrors.Wrap(apperrors.KindRateLimited, msgTooManyAttempts, err)
	default:
		log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		return nil
	}
}

func (s *SessionService) recordFailure(ctx context.Context, logins []string) {
	if s.limiter == nil {
		return
	}
	for _, login := range logins {
		if err := s.limiter.RecordFailure(ctx, login); err != nil {
			log.Warn().Err(err).Msg("failed to record login failure")
		}
	}
}

func (s *SessionService) resetLimiter(ctx context.Context, logins []string) {
	if s.limiter == nil {
		return
	}
	for _, login := range logins {
		if err := s.limiter.Reset(ctx, login); err != nil {
			log.Warn().Err(err).Msg("failed to reset login limiter")
		}
	}
}

// findUser returns the first user matching one of logins.
func (s *SessionService) findUser(ctx context.Context, logins []string) (*users.User, error) {
	for _, login := range logins {
		user, err := s.store.GetByUsernameOrEmail(ctx, login)
		if errors.Is(err, users.ErrNotFound) {
			continue
		}
		return user, err
	}
	return nil, users.ErrNotFound
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	return apperrors.KindOf(err).String()
}
