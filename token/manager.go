package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/vidtube/vidtube-server/internal/config"
)

// Pair is what a successful login or rotation hands back to the client.
type Pair struct {
	Access  Issued
	Refresh Issued
}

// Manager owns one codec per token kind, each with its own secret, so that
// holding one secret never allows forging the other kind.
type Manager struct {
	access     *Codec
	refresh    *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(cfg config.TokenConfig, options ...CodecOption) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("[NewManager] token config is required")
	}
	if cfg.GetAccessTokenSecret() == "" || cfg.GetRefreshTokenSecret() == "" {
		return nil, errors.New("[NewManager] access and refresh secrets are required")
	}
	if cfg.GetAccessTokenSecret() == cfg.GetRefreshTokenSecret() {
		return nil, errors.New("[NewManager] access and refresh secrets must differ")
	}
	if cfg.GetAccessTokenExpiry() <= 0 || cfg.GetRefreshTokenExpiry() <= 0 {
		return nil, errors.New("[NewManager] token expiries must be positive")
	}

	return &Manager{
		access:     NewCodec(Access, NewHMACSigner(cfg.GetAccessTokenSecret()), options...),
		refresh:    NewCodec(Refresh, NewHMACSigner(cfg.GetRefreshTokenSecret()), options...),
		accessTTL:  cfg.GetAccessTokenExpiry(),
		refreshTTL: cfg.GetRefreshTokenExpiry(),
	}, nil
}

// IssuePair creates a fresh access and refresh token for userID.
func (m *Manager) IssuePair(userID string) (Pair, error) {
	access, err := m.access.Issue(userID, m.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("[Manager IssuePair] %w", err)
	}
	refresh, err := m.refresh.Issue(userID, m.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("[Manager IssuePair] %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (m *Manager) VerifyAccess(value string) (string, error) {
	return m.access.Verify(value)
}

func (m *Manager) VerifyRefresh(value string) (string, error) {
	return m.refresh.Verify(value)
}
