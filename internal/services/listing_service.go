// Package services – ListingService
//
// This file implements the phone listings: public browsing with an optional
// model filter, and administrator-only creation (with photos) and deletion.
// Photos are staged on disk before the rows are written so that a failed
// transaction can be compensated by removing the staged files.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/apple-market/internal/domain"
	"github.com/tbourn/apple-market/internal/repo"
	"github.com/tbourn/apple-market/internal/storage"
)

// FileStore is the storage contract ListingService needs for photos.
type FileStore interface {
	// Save stores r under a sanitized, unused name and returns that name.
	Save(name string, r io.Reader) (string, error)
	// Delete removes a stored file; a missing file is not an error.
	Delete(name string) error
}

// ProductInput carries the editable fields of a new listing.
type ProductInput struct {
	Model       string
	Price       float64
	Condition   string
	Battery     int
	Memory      string
	Color       string
	Package     string
	Description string
}

// Upload is one photo attached to a new listing. Open is called once.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// ListingService manages phone listings and their photos.
type ListingService struct {
	DB    *gorm.DB
	Files FileStore
	// StrictModels rejects models outside domain.AllowedModels on Create.
	StrictModels bool
	Log          zerolog.Logger
}

// NewListingService constructs a ListingService.
func NewListingService(db *gorm.DB, files FileStore, strictModels bool, log zerolog.Logger) *ListingService {
	return &ListingService{DB: db, Files: files, StrictModels: strictModels, Log: log}
}

// effectiveFilter returns modelFilter when it names an allowed model, and ""
// (no filter) otherwise.
func effectiveFilter(modelFilter string) string {
	if domain.IsAllowedModel(modelFilter) {
		return modelFilter
	}
	return ""
}

// List returns all products, or only those of modelFilter when it is one of
// the allowed models. Images are loaded.
func (s *ListingService) List(ctx context.Context, modelFilter string) ([]domain.Product, error) {
	filter := effectiveFilter(modelFilter)
	ctx, span := otel.Tracer("services/ListingService").Start(ctx, "List",
		trace.WithAttributes(attribute.String("product.model_filter", filter)),
	)
	defer span.End()

	return repo.ListProducts(ctx, s.DB, filter)
}

// Stats returns the count and highest id of the products List would return
// for modelFilter.
func (s *ListingService) Stats(ctx context.Context, modelFilter string) (int64, uint, error) {
	return repo.ProductsStats(ctx, s.DB, effectiveFilter(modelFilter))
}

// Create stores the photos and inserts the product with its images.
// Only administrators may create listings. Uploads without a filename are
// skipped. On any failure no rows are written and staged photos are removed.
func (s *ListingService) Create(ctx context.Context, p *domain.Principal, in ProductInput, files []Upload) (*domain.Product, error) {
	ctx, span := otel.Tracer("services/ListingService").Start(ctx, "Create")
	defer span.End()

	if err := RequireAdmin(p); err != nil {
		return nil, err
	}

	in.Model = strings.TrimSpace(in.Model)
	if in.Model == "" {
		return nil, ErrInvalidProduct
	}
	if s.StrictModels && !domain.IsAllowedModel(in.Model) {
		return nil, ErrUnknownModel
	}

	staged, err := s.stage(files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stage uploads")
		return nil, err
	}

	prod := &domain.Product{
		Model:       in.Model,
		Price:       in.Price,
		Condition:   strings.TrimSpace(in.Condition),
		Battery:     in.Battery,
		Memory:      strings.TrimSpace(in.Memory),
		Color:       strings.TrimSpace(in.Color),
		Package:     strings.TrimSpace(in.Package),
		Description: strings.TrimSpace(in.Description),
		Images:      make([]domain.ProductImage, 0, len(staged)),
	}
	for _, name := range staged {
		prod.Images = append(prod.Images, domain.ProductImage{Filename: name})
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.CreateProduct(ctx, tx, prod)
	})
	if err != nil {
		s.unstage(staged)
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert product")
		return nil, fmt.Errorf("create product: %w", err)
	}

	productsCreated.Inc()
	imagesStored.Add(float64(len(staged)))
	span.SetAttributes(
		attribute.Int64("product.id", int64(prod.ID)),
		attribute.Int("product.images", len(staged)),
	)
	s.Log.Info().
		Uint("product_id", prod.ID).
		Str("model", prod.Model).
		Int("images", len(staged)).
		Msg("product created")
	return prod, nil
}

// stage writes every named upload to storage and returns the stored names.
// If one fails, the ones already written are removed.
func (s *ListingService) stage(files []Upload) ([]string, error) {
	staged := make([]string, 0, len(files))
	for _, f := range files {
		if strings.TrimSpace(f.Filename) == "" || f.Open == nil {
			continue
		}
		name, err := s.saveOne(f)
		if err != nil {
			s.unstage(staged)
			if errors.Is(err, storage.ErrInvalidName) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidUpload, f.Filename)
			}
			return nil, fmt.Errorf("store %q: %w", f.Filename, err)
		}
		staged = append(staged, name)
	}
	return staged, nil
}

func (s *ListingService) saveOne(f Upload) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.Files.Save(f.Filename, rc)
}

func (s *ListingService) unstage(names []string) {
	for _, name := range names {
		if err := s.Files.Delete(name); err != nil {
			s.Log.Warn().Err(err).Str("file", name).Msg("could not remove staged upload")
		}
	}
}

// Delete removes a product, its image rows, and then the photo files.
// Only administrators may delete. A photo that is already gone is ignored;
// other file errors are logged and do not fail the call.
func (s *ListingService) Delete(ctx context.Context, p *domain.Principal, id uint) error {
	ctx, span := otel.Tracer("services/ListingService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("product.id", int64(id))),
	)
	defer span.End()

	if err := RequireAdmin(p); err != nil {
		return err
	}

	var filenames []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prod, err := repo.GetProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, img := range prod.Images {
			filenames = append(filenames, img.Filename)
		}
		return repo.DeleteProduct(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete product")
		return err
	}

	for _, name := range filenames {
		if err := s.Files.Delete(name); err != nil {
			s.Log.Error().Err(err).Uint("product_id", id).Str("file", name).Msg("could not remove product image")
		}
	}

	productsDeleted.Inc()
	s.Log.Info().Uint("product_id", id).Int("images", len(filenames)).Msg("product deleted")
	return nil
}
