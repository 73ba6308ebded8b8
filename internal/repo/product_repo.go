// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// and ProductImage models.
//
// Functions:
//
//   - CreateProduct(ctx, db, p) -> error
//     Inserts the product and every image in p.Images (one statement per
//     table, atomic when db is a transaction).
//
//   - ListProducts(ctx, db, model) -> []domain.Product, error
//     Returns all products, or those with an exact model match when model is
//     non-empty. Images are preloaded. Ordered by id ascending.
//
//   - GetProduct(ctx, db, id) -> *domain.Product, error
//     Fetches a product with images, or ErrNotFound.
//
//   - DeleteProduct(ctx, db, id) -> error
//     Deletes image rows, then the product row. ErrNotFound if the product
//     did not exist.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/apple-market/internal/domain"
)

// CreateProduct inserts p together with p.Images. IDs are written back into
// p and each image.
func CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return db.WithContext(ctx).Create(p).Error
}

// ListProducts returns products in id order with their images. An empty
// model means no filter.
func ListProducts(ctx context.Context, db *gorm.DB, model string) ([]domain.Product, error) {
	out := []domain.Product{}
	q := db.WithContext(ctx).Preload("Images", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	})
	if model != "" {
		q = q.Where("model = ?", model)
	}
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

// GetProduct fetches a single product with its images. If the record does
// not exist, it returns ErrNotFound.
func GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes the product's image rows and then the product row.
// Callers wanting both deletes to succeed or fail together pass a
// transaction handle.
func DeleteProduct(ctx context.Context, db *gorm.DB, id uint) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
