package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/apple-market/internal/domain"
	"github.com/tbourn/apple-market/internal/repo"
)

func TestMessagingPost_SenderDerivedFromPrincipal(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db, 0, zerolog.Nop())
	ctx := context.Background()

	admin := seedUser(t, db, "root", true)
	alice := seedUser(t, db, "alice", false)

	m1, err := svc.Post(ctx, alice, alice.UserID, "Is the 13 still available?")
	if err != nil {
		t.Fatalf("user Post: %v", err)
	}
	if m1.Sender != domain.SenderUser || m1.UserID != alice.UserID {
		t.Fatalf("unexpected user message: %+v", m1)
	}

	m2, err := svc.Post(ctx, admin, alice.UserID, "Yes it is.")
	if err != nil {
		t.Fatalf("admin Post: %v", err)
	}
	if m2.Sender != domain.SenderAdmin || m2.UserID != alice.UserID {
		t.Fatalf("unexpected admin message: %+v", m2)
	}

	conv, err := svc.Conversation(ctx, alice, alice.UserID)
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if len(conv) != 2 || conv[0].ID != m1.ID || conv[1].ID != m2.ID {
		t.Fatalf("conversation out of order: %+v", conv)
	}
}

func TestMessagingPost_Normalization(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db, 5, zerolog.Nop())
	ctx := context.Background()
	bob := seedUser(t, db, "bob", false)

	m, err := svc.Post(ctx, bob, bob.UserID, "  a\r\nb\rc  ")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if m.Text != "a\nb\nc" {
		t.Fatalf("text not normalized: %q", m.Text)
	}

	for _, blank := range []string{"", "   ", "\r\n\t"} {
		if _, err := svc.Post(ctx, bob, bob.UserID, blank); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Post(%q) = %v, want ErrEmptyMessage", blank, err)
		}
	}

	if _, err := svc.Post(ctx, bob, bob.UserID, "ééééé"); err != nil {
		t.Fatalf("5 runes must fit: %v", err)
	}
	if _, err := svc.Post(ctx, bob, bob.UserID, strings.Repeat("x", 6)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}

	n, _, _ := repo.ConversationStats(ctx, db, bob.UserID)
	if n != 2 {
		t.Fatalf("rejected messages must not be stored, got %d rows", n)
	}
}

func TestMessaging_AccessControl(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db, 0, zerolog.Nop())
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	admin := seedUser(t, db, "root", true)

	if _, err := svc.Post(ctx, nil, alice.UserID, "hi"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous Post = %v", err)
	}
	if _, err := svc.Post(ctx, bob, alice.UserID, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cross-user Post = %v", err)
	}
	if _, err := svc.Conversation(ctx, bob, alice.UserID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cross-user Conversation = %v", err)
	}
	if _, err := svc.Conversation(ctx, nil, alice.UserID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous Conversation = %v", err)
	}
	if n, _, _ := repo.ConversationStats(ctx, db, alice.UserID); n != 0 {
		t.Fatalf("forbidden posts must not be stored, got %d", n)
	}

	// Admin can read any conversation, including an empty one.
	conv, err := svc.Conversation(ctx, admin, bob.UserID)
	if err != nil || len(conv) != 0 {
		t.Fatalf("admin Conversation: %+v err=%v", conv, err)
	}

	// Unknown conversation user.
	if _, err := svc.Post(ctx, admin, 9999, "hello?"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	// A user probing another id gets forbidden, not not-found.
	if _, err := svc.Conversation(ctx, bob, 9999); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMessagingStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db, 0, zerolog.Nop())
	ctx := context.Background()

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)

	if _, _, err := svc.Stats(ctx, bob, alice.UserID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cross-user Stats = %v", err)
	}
	n, maxID, err := svc.Stats(ctx, alice, alice.UserID)
	if err != nil || n != 0 || maxID != 0 {
		t.Fatalf("empty Stats: n=%d max=%d err=%v", n, maxID, err)
	}
	m, err := svc.Post(ctx, alice, alice.UserID, "hello")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	n, maxID, err = svc.Stats(ctx, alice, alice.UserID)
	if err != nil || n != 1 || maxID != m.ID {
		t.Fatalf("Stats after post: n=%d max=%d err=%v", n, maxID, err)
	}
}

func TestMessagingInbox(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db, 0, zerolog.Nop())
	ctx := context.Background()

	admin := seedUser(t, db, "root", true)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)

	if _, err := svc.Inbox(ctx, alice); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin Inbox = %v", err)
	}
	if _, err := svc.Inbox(ctx, nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous Inbox = %v", err)
	}

	_, _ = svc.Post(ctx, bob, bob.UserID, "first")
	_, _ = svc.Post(ctx, alice, alice.UserID, "second")
	_, _ = svc.Post(ctx, admin, alice.UserID, "reply")

	inbox, err := svc.Inbox(ctx, admin)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("expected 2 conversations, got %+v", inbox)
	}
	if inbox[0].Username != "alice" || inbox[0].MessageCount != 2 {
		t.Fatalf("most recent conversation first, got %+v", inbox[0])
	}
	if inbox[1].Username != "bob" || inbox[1].MessageCount != 1 {
		t.Fatalf("unexpected second conversation %+v", inbox[1])
	}
}
