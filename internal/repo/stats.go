// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (weak ETags) in the HTTP layer.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/apple-market/internal/domain"
)

// ProductsStats returns the number of products matching model (all products
// when model is empty) and the highest product id among them.
//
// Products are never edited in place, so (count, max id) changes whenever the
// listing does: a create raises max id, a delete lowers count.
//
// When nothing matches, count and maxID are 0.
func ProductsStats(ctx context.Context, db *gorm.DB, model string) (count int64, maxID uint, err error) {
	q := db.WithContext(ctx).Model(&domain.Product{})
	if model != "" {
		q = q.Where("model = ?", model)
	}

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct {
		ID uint
	}
	if err = q.Select("id").Order("id DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.ID, nil
}

// ConversationStats returns the message count and the highest message id of
// the conversation of userID.
func ConversationStats(ctx context.Context, db *gorm.DB, userID uint) (count int64, maxID uint, err error) {
	q := db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct {
		ID uint
	}
	if err = q.Select("id").Order("id DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.ID, nil
}
