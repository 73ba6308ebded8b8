// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ChatMessage model. Messages are append-only: there is no update or delete.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/apple-market/internal/domain"
)

// CreateMessage appends a message to the conversation of userID.
func CreateMessage(ctx context.Context, db *gorm.DB, userID uint, sender, text string) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		UserID:    userID,
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages returns the whole conversation of userID in insertion order.
func ListMessages(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ChatMessage, error) {
	out := []domain.ChatMessage{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// ListConversations returns one summary per conversation that has at least
// one message, most recently active first.
func ListConversations(ctx context.Context, db *gorm.DB) ([]domain.ConversationSummary, error) {
	out := []domain.ConversationSummary{}
	err := db.WithContext(ctx).
		Table("chat_messages AS m").
		Select("m.user_id AS user_id, COALESCE(u.username, '') AS username, COUNT(*) AS message_count, MAX(m.id) AS last_message_id").
		Joins("LEFT JOIN users AS u ON u.id = m.user_id").
		Group("m.user_id, u.username").
		Order("last_message_id DESC").
		Scan(&out).Error
	return out, err
}
