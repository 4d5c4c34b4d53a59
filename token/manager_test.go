package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vidtube/vidtube-server/internal/config"
	"github.com/vidtube/vidtube-server/token"
)

func testTokenConfig() config.Tokens {
	return config.Tokens{
		AccessSecret:  accessSecret,
		AccessExpiry:  15 * time.Minute,
		RefreshSecret: refreshSecret,
		RefreshExpiry: 10 * 24 * time.Hour,
	}
}

func TestNewManager_Validation(t *testing.T) {
	_, err := token.NewManager(nil)
	require.Error(t, err)

	cfg := testTokenConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	_, err = token.NewManager(cfg)
	require.ErrorContains(t, err, "must differ")

	cfg = testTokenConfig()
	cfg.AccessExpiry = 0
	_, err = token.NewManager(cfg)
	require.Error(t, err)
}

func TestManager_IssuePair(t *testing.T) {
	_, clock := fixedClock()
	m, err := token.NewManager(testTokenConfig(), token.WithNowFunc(clock))
	require.NoError(t, err)

	pair, err := m.IssuePair(testUserID)
	require.NoError(t, err)
	require.Equal(t, clock().Add(15*time.Minute), pair.Access.ExpiresAt)
	require.Equal(t, clock().Add(10*24*time.Hour), pair.Refresh.ExpiresAt)

	userID, err := m.VerifyAccess(pair.Access.Value)
	require.NoError(t, err)
	require.Equal(t, testUserID, userID)

	userID, err = m.VerifyRefresh(pair.Refresh.Value)
	require.NoError(t, err)
	require.Equal(t, testUserID, userID)

	_, err = m.VerifyAccess(pair.Refresh.Value)
	require.ErrorIs(t, err, token.ErrBadSignature)
	_, err = m.VerifyRefresh(pair.Access.Value)
	require.ErrorIs(t, err, token.ErrBadSignature)
}
