// Package services – MessagingService
//
// This file implements the per-user conversation with the administrator.
// Every user has exactly one conversation, keyed by the user's id; the user
// and any administrator may read and write it.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/apple-market/internal/domain"
	"github.com/tbourn/apple-market/internal/repo"
)

// DefaultMaxTextRunes caps message length when none is configured.
const DefaultMaxTextRunes = 4000

// MessagingService coordinates reading and posting chat messages.
type MessagingService struct {
	DB *gorm.DB
	// MaxTextRunes caps message length; zero means DefaultMaxTextRunes.
	MaxTextRunes int
	Log          zerolog.Logger
}

// NewMessagingService constructs a MessagingService.
func NewMessagingService(db *gorm.DB, maxTextRunes int, log zerolog.Logger) *MessagingService {
	if maxTextRunes <= 0 {
		maxTextRunes = DefaultMaxTextRunes
	}
	return &MessagingService{DB: db, MaxTextRunes: maxTextRunes, Log: log}
}

// Post appends a message to the conversation of conversationUserID on
// behalf of p. The sender is "admin" for administrators and "user"
// otherwise.
func (s *MessagingService) Post(ctx context.Context, p *domain.Principal, conversationUserID uint, text string) (*domain.ChatMessage, error) {
	ctx, span := otel.Tracer("services/MessagingService").Start(ctx, "Post",
		trace.WithAttributes(attribute.Int64("conversation.user_id", int64(conversationUserID))),
	)
	defer span.End()

	if err := s.authorize(ctx, p, conversationUserID); err != nil {
		return nil, err
	}

	text = normalizeText(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.maxRunes() {
		return nil, ErrTooLong
	}

	sender := p.Sender()
	m, err := repo.CreateMessage(ctx, s.DB, conversationUserID, sender, text)
	if err != nil {
		return nil, err
	}
	messagesPosted.WithLabelValues(sender).Inc()
	span.SetAttributes(attribute.String("message.sender", sender))
	return m, nil
}

// Conversation returns every message of the conversation of
// conversationUserID in the order they were posted.
func (s *MessagingService) Conversation(ctx context.Context, p *domain.Principal, conversationUserID uint) ([]domain.ChatMessage, error) {
	ctx, span := otel.Tracer("services/MessagingService").Start(ctx, "Conversation",
		trace.WithAttributes(attribute.Int64("conversation.user_id", int64(conversationUserID))),
	)
	defer span.End()

	if err := s.authorize(ctx, p, conversationUserID); err != nil {
		return nil, err
	}
	return repo.ListMessages(ctx, s.DB, conversationUserID)
}

// Stats returns the message count and highest message id of the
// conversation of conversationUserID, under the same access rules as
// Conversation.
func (s *MessagingService) Stats(ctx context.Context, p *domain.Principal, conversationUserID uint) (int64, uint, error) {
	if err := s.authorize(ctx, p, conversationUserID); err != nil {
		return 0, 0, err
	}
	return repo.ConversationStats(ctx, s.DB, conversationUserID)
}

// Inbox lists every conversation with at least one message, most recently
// active first. Administrators only.
func (s *MessagingService) Inbox(ctx context.Context, p *domain.Principal) ([]domain.ConversationSummary, error) {
	ctx, span := otel.Tracer("services/MessagingService").Start(ctx, "Inbox")
	defer span.End()

	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	return repo.ListConversations(ctx, s.DB)
}

// authorize checks login and access first, then that the conversation's
// user exists.
func (s *MessagingService) authorize(ctx context.Context, p *domain.Principal, conversationUserID uint) error {
	if err := RequireLogin(p); err != nil {
		return err
	}
	if !p.CanAccessConversation(conversationUserID) {
		return ErrForbidden
	}
	if _, err := repo.GetUserByID(ctx, s.DB, conversationUserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *MessagingService) maxRunes() int {
	if s.MaxTextRunes > 0 {
		return s.MaxTextRunes
	}
	return DefaultMaxTextRunes
}

// normalizeText converts CRLF and lone CR line endings to LF and trims
// surrounding whitespace.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
