package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes the two token families. Each kind is signed with its
// own secret and carries its kind in the "typ" claim.
type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
)

var (
	ErrMalformed    = errors.New("malformed token")
	ErrBadSignature = errors.New("token signature is invalid")
	ErrExpired      = errors.New("token is expired")
)

// Claims is the payload of every issued token.
type Claims struct {
	Kind Kind `json:"typ"`
	jwt.RegisteredClaims
}

// Issued is a signed token and the instant it stops being valid.
type Issued struct {
	Value     string
	ExpiresAt time.Time
}

// Codec issues and verifies tokens of a single kind. Verification is purely
// cryptographic and never touches a store.
type Codec struct {
	kind    Kind
	signer  Signer
	nowFunc func() time.Time
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithNowFunc sets the clock used for issuing and verifying (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(kind Kind, signer Signer, options ...CodecOption) *Codec {
	c := &Codec{
		kind:    kind,
		signer:  signer,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Issue signs a token for userID that expires ttl after now. Every token gets
// a fresh jti so two tokens issued in the same second never collide.
func (c *Codec) Issue(userID string, ttl time.Duration) (Issued, error) {
	if strings.TrimSpace(userID) == "" {
		return Issued{}, errors.New("[Codec Issue] user id is required")
	}
	now := c.nowFunc()
	claims := Claims{
		Kind: c.kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	value, err := c.signer.Sign(claims)
	if err != nil {
		return Issued{}, fmt.Errorf("[Codec Issue] %s token: %w", c.kind, err)
	}
	return Issued{Value: value, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks the signature and expiry of value and returns the user id it
// was issued for.
func (c *Codec) Verify(value string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(value, claims, c.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.nowFunc),
	)
	if err != nil {
		return "", classify(err)
	}

	// A token is dead at its expiry instant, including a zero ttl.
	if !c.nowFunc().Before(claims.ExpiresAt.Time) {
		return "", ErrExpired
	}
	if claims.Kind != c.kind {
		return "", fmt.Errorf("%w: expected %s token, got %q", ErrMalformed, c.kind, claims.Kind)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformed)
	}
	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
