// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - A username collision on insert returns ErrDuplicate.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/apple-market/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that a unique constraint rejected an insert.
var ErrDuplicate = errors.New("duplicate")

// CreateUser inserts a user row. A username that already exists yields
// ErrDuplicate.
func CreateUser(ctx context.Context, db *gorm.DB, username, passwordHash string, isAdmin bool) (*domain.User, error) {
	u := &domain.User{
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// GetUserByID fetches a user by primary key, or ErrNotFound.
func GetUserByID(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername fetches a user by exact username, or ErrNotFound.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUsersByUsername returns how many rows carry username (0 or 1 while
// the unique index holds).
func CountUsersByUsername(ctx context.Context, db *gorm.DB, username string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("username = ?", username).
		Count(&n).Error
	return n, err
}

// SetUserAdmin updates the admin flag. Returns ErrNotFound when no row matched.
func SetUserAdmin(ctx context.Context, db *gorm.DB, id uint, isAdmin bool) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("is_admin", isAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUserByUsername removes the user (and, through the FK, its sessions)
// and reports how many rows were deleted.
func DeleteUserByUsername(ctx context.Context, db *gorm.DB, username string) (int64, error) {
	res := db.WithContext(ctx).Where("username = ?", username).Delete(&domain.User{})
	return res.RowsAffected, res.Error
}

// isUniqueViolation detects unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
