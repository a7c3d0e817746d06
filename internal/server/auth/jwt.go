// Package auth holds the two cryptographic primitives of the session core:
// the token codec that signs and verifies JWTs, and the password hasher.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/server/models"
)

// Kind separates access tokens from refresh tokens. A token of one kind is
// never accepted where the other is expected.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Issuer is stamped into every token this server mints.
const Issuer = "jobfind"

func (k Kind) audience() string { return Issuer + ":" + string(k) }

// Claims is the payload of both token kinds: the standard claims, the kind
// marker, and a snapshot of the user taken at issue time.
type Claims struct {
	jwt.RegisteredClaims
	Kind Kind                `json:"kind"`
	User models.UserSnapshot `json:"user"`
}

// TokenCodec signs and verifies HS256 tokens with a single shared secret.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec builds a codec for secret. An empty secret is rejected.
func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", common.ErrConfig)
	}
	return &TokenCodec{secret: secret, now: time.Now}, nil
}

// WithClock returns a copy of c that reads the time from now. Tests use it
// to move past a token's expiry without sleeping.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	return &TokenCodec{secret: c.secret, now: now}
}

// Issue mints a token of the given kind for subject, valid for ttl.
// Every token carries a random jti, so two tokens issued in the same second
// for the same user still differ.
func (c *TokenCodec) Issue(kind Kind, subject string, user models.UserSnapshot, ttl time.Duration) (string, error) {
	now := c.now()
	// NumericDate drops sub-second precision, so exp is rounded up to keep
	// the token usable for at least ttl.
	exp := now.Add(ttl)
	if t := exp.Truncate(jwt.TimePrecision); !t.Equal(exp) {
		exp = t.Add(jwt.TimePrecision)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{kind.audience()},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Kind: kind,
		User: user,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return tokenString, nil
}

// Verify checks signature, expiry, issuer and kind. Any failure is reported
// as common.ErrInvalidToken; the underlying jwt error is kept in the chain.
func (c *TokenCodec) Verify(tokenString string, expected Kind) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(expected.audience()),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Kind != expected {
		return nil, fmt.Errorf("%w: got %q token, want %q", common.ErrInvalidToken, claims.Kind, expected)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, errors.New("empty subject"))
	}

	return claims, nil
}

// GetSubjectFromToken verifies an access token and returns its subject
// (the user's email).
func (c *TokenCodec) GetSubjectFromToken(tokenString string) (string, error) {
	claims, err := c.Verify(tokenString, KindAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
