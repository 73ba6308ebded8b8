package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on every session token and required on validation.
const Issuer = "apple-market"

// MinSecretLen is the shortest signing secret NewTokenSigner accepts.
const MinSecretLen = 16

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims identifies the login a token was issued for.
type Claims struct {
	UserID    uint
	SessionID string
	ExpiresAt time.Time
}

// TokenSigner issues and validates HS256 session tokens. The subject claim
// carries the user id and the token id carries the session id.
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTokenSigner returns a signer for secret.
func NewTokenSigner(secret string) (*TokenSigner, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("auth: token secret must be at least %d characters", MinSecretLen)
	}
	return &TokenSigner{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token for a session that expires at expiresAt.
func (s *TokenSigner) Issue(userID uint, sessionID string, expiresAt time.Time) (string, error) {
	if userID == 0 || sessionID == "" {
		return "", errors.New("auth: user id and session id are required")
	}
	rc := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        sessionID,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, rc).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry, and returns the
// claims. Every failure wraps ErrInvalidToken.
func (s *TokenSigner) Validate(token string) (*Claims, error) {
	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &rc,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	uid, err := strconv.ParseUint(rc.Subject, 10, 64)
	if err != nil || uid == 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if rc.ID == "" {
		return nil, fmt.Errorf("%w: missing token id", ErrInvalidToken)
	}
	c := &Claims{UserID: uint(uid), SessionID: rc.ID}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
