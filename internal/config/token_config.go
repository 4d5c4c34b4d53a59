package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
)

type TokenConfig interface {
	GetAccessTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenSecret() string
	GetRefreshTokenExpiry() time.Duration
}

// Tokens holds the signing material for the two token kinds.
type Tokens struct {
	AccessSecret  string
	AccessExpiry  time.Duration
	RefreshSecret string
	RefreshExpiry time.Duration
}

var _ TokenConfig = Tokens{}

func (t Tokens) GetAccessTokenSecret() string {
	return t.AccessSecret
}

func (t Tokens) GetAccessTokenExpiry() time.Duration {
	return t.AccessExpiry
}

func (t Tokens) GetRefreshTokenSecret() string {
	return t.RefreshSecret
}

func (t Tokens) GetRefreshTokenExpiry() time.Duration {
	return t.RefreshExpiry
}

// Validate rejects token settings the session manager cannot run with.
func (t Tokens) Validate() error {
	var errs []error
	if t.AccessSecret == "" {
		errs = append(errs, fmt.Errorf("%s is required", strings.ToUpper(accessTokenSecretVar)))
	}
	if t.RefreshSecret == "" {
		errs = append(errs, fmt.Errorf("%s is required", strings.ToUpper(refreshTokenSecretVar)))
	}
	if t.AccessSecret != "" && t.AccessSecret == t.RefreshSecret {
		errs = append(errs, errors.New("access and refresh token secrets must differ"))
	}
	if t.AccessExpiry <= 0 {
		errs = append(errs, fmt.Errorf("%s must be a positive duration", strings.ToUpper(accessTokenExpiryVar)))
	}
	if t.RefreshExpiry <= 0 {
		errs = append(errs, fmt.Errorf("%s must be a positive duration", strings.ToUpper(refreshTokenExpiryVar)))
	}
	return errors.Join(errs...)
}

func loadTokens(k *koanf.Koanf) (Tokens, error) {
	var errs []error
	expiry := func(key string) time.Duration {
		raw := k.String(key)
		if raw == "" {
			return 0
		}
		d, err := ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", strings.ToUpper(key), err))
		}
		return d
	}

	t := Tokens{
		AccessSecret:  k.String(accessTokenSecretVar),
		AccessExpiry:  expiry(accessTokenExpiryVar),
		RefreshSecret: k.String(refreshTokenSecretVar),
		RefreshExpiry: expiry(refreshTokenExpiryVar),
	}
	if err := errors.Join(append(errs, t.Validate())...); err != nil {
		return Tokens{}, fmt.Errorf("[config Load] invalid token configuration: %w", err)
	}
	return t, nil
}
