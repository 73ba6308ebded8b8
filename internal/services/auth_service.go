// Package services – AuthService
//
// This file implements account registration, login/logout backed by a
// session row plus a signed token, resolution of a token back into a
// Principal, and bootstrap of the administrator account.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/apple-market/internal/auth"
	"github.com/tbourn/apple-market/internal/domain"
	"github.com/tbourn/apple-market/internal/repo"
)

// maxUsernameRunes matches the users.username column width.
const maxUsernameRunes = 150

// Session is the result of a successful login.
type Session struct {
	Principal domain.Principal `json:"principal"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// AuthService manages accounts and login sessions.
type AuthService struct {
	DB     *gorm.DB
	Hasher *auth.Hasher
	Tokens *auth.TokenSigner
	// TTL is the lifetime of a login session.
	TTL time.Duration
	Log zerolog.Logger

	now func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, hasher *auth.Hasher, tokens *auth.TokenSigner, ttl time.Duration, log zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuthService{
		DB:     db,
		Hasher: hasher,
		Tokens: tokens,
		TTL:    ttl,
		Log:    log,
		now:    time.Now,
	}
}

func (s *AuthService) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// Register creates a non-admin account. An existing username yields
// ErrUsernameTaken and leaves the store unchanged.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Register")
	defer span.End()

	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	n, err := repo.CountUsersByUsername(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, ErrInvalidCredentialsInput
		}
		return nil, err
	}

	u, err := repo.CreateUser(ctx, s.DB, username, hash, false)
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", int64(u.ID)))
	return u, nil
}

// Login checks credentials and opens a session. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Login")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		loginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	u, err := repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			loginsTotal.WithLabelValues("failure").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.Hasher.Verify(u.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrMismatch) {
			s.Log.Error().Err(err).Uint("user_id", u.ID).Msg("stored password hash is unusable")
		}
		loginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	row, err := repo.CreateSession(ctx, s.DB, u.ID, s.TTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, err := s.Tokens.Issue(u.ID, row.ID, row.ExpiresAt)
	if err != nil {
		_ = repo.DeleteSession(ctx, s.DB, row.ID)
		return nil, err
	}

	loginsTotal.WithLabelValues("success").Inc()
	span.SetAttributes(attribute.Int64("user.id", int64(u.ID)))
	return &Session{
		Principal: principalOf(u, row.ID),
		Token:     token,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Logout ends the session of p. The token that carried it no longer
// resolves afterwards.
func (s *AuthService) Logout(ctx context.Context, p *domain.Principal) error {
	if err := RequireLogin(p); err != nil {
		return err
	}
	return repo.DeleteSession(ctx, s.DB, p.SessionID)
}

// Resolve turns a session token into the Principal it was issued for. Any
// failure, including an expired or logged-out session, yields
// ErrUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Principal, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Resolve")
	defer span.End()

	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.Tokens.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	row, err := repo.GetSession(ctx, s.DB, claims.SessionID, s.clock())
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.Log.Error().Err(err).Msg("session lookup failed")
		}
		return nil, ErrUnauthenticated
	}
	if row.UserID != claims.UserID || row.User.ID == 0 {
		return nil, ErrUnauthenticated
	}

	p := principalOf(&row.User, row.ID)
	span.SetAttributes(
		attribute.Int64("user.id", int64(p.UserID)),
		attribute.Bool("user.admin", p.IsAdmin),
	)
	return &p, nil
}

// RequireLogin returns ErrUnauthenticated when p is nil.
func (s *AuthService) RequireLogin(p *domain.Principal) error { return RequireLogin(p) }

// RequireAdmin returns ErrUnauthenticated or ErrForbidden unless p is an
// administrator.
func (s *AuthService) RequireAdmin(p *domain.Principal) error { return RequireAdmin(p) }

// EnsureAdmin makes sure an administrator account named username exists.
// A missing account is created with password; an existing non-admin
// account is promoted and keeps its password. Empty credentials skip the
// bootstrap with a warning.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "EnsureAdmin",
		trace.WithAttributes(attribute.String("admin.username", username)),
	)
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.Log.Warn().Msg("admin bootstrap skipped: ADMIN_USERNAME/ADMIN_PASSWORD not set")
		return nil
	}

	u, err := repo.GetUserByUsername(ctx, s.DB, username)
	switch {
	case err == nil && u.IsAdmin:
		return nil
	case err == nil:
		if err := repo.SetUserAdmin(ctx, s.DB, u.ID, true); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		s.Log.Info().Str("username", username).Msg("existing user promoted to admin")
		return nil
	case !errors.Is(err, repo.ErrNotFound):
		return err
	}

	if err := validateCredentials(username, password); err != nil {
		return err
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return err
	}
	if _, err := repo.CreateUser(ctx, s.DB, username, hash, true); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// Created concurrently by another instance; promote whatever is there.
			return s.EnsureAdmin(ctx, username, password)
		}
		return fmt.Errorf("create admin: %w", err)
	}
	s.Log.Info().Str("username", username).Msg("admin account created")
	return nil
}

// ResetAdmin deletes any account named username, together with its
// sessions, and creates a fresh administrator in one transaction.
func (s *AuthService) ResetAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, ErrInvalidCredentialsInput
		}
		return nil, err
	}

	var out *domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.DeleteUserByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		if n > 0 {
			s.Log.Info().Str("username", username).Msg("previous admin account deleted")
		}
		u, err := repo.CreateUser(ctx, tx, username, hash, true)
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PurgeExpiredSessions removes sessions that have expired.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return repo.DeleteExpiredSessions(ctx, s.DB, s.clock())
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidCredentialsInput
	}
	if utf8.RuneCountInString(username) > maxUsernameRunes {
		return ErrInvalidCredentialsInput
	}
	return nil
}

func principalOf(u *domain.User, sessionID string) domain.Principal {
	return domain.Principal{
		UserID:    u.ID,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		SessionID: sessionID,
	}
}
