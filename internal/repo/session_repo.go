// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for login sessions.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/apple-market/internal/domain"
)

// CreateSession inserts a session for userID valid for ttl.
func CreateSession(ctx context.Context, db *gorm.DB, userID uint, ttl time.Duration) (*domain.Session, error) {
	now := time.Now().UTC()
	s := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession returns a session that has not expired at now, with its User
// loaded, or ErrNotFound.
func GetSession(ctx context.Context, db *gorm.DB, id string, now time.Time) (*domain.Session, error) {
	var s domain.Session
	err := db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND expires_at > ?", id, now).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session. Deleting an unknown id is not an error.
func DeleteSession(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{}).Error
}

// DeleteExpiredSessions purges sessions that expired at or before now and
// returns how many rows were removed.
func DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
