package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/apple-market/internal/auth"
	"github.com/tbourn/apple-market/internal/domain"
	"github.com/tbourn/apple-market/internal/repo"
)

const testSecret = "services-test-secret-0123456789"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()
	signer, err := auth.NewTokenSigner(testSecret)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}
	return NewAuthService(db, auth.NewHasher(bcrypt.MinCost), signer, 0, zerolog.Nop())
}

// seedUser inserts a user directly and returns the principal it would log
// in as (without a session).
func seedUser(t *testing.T, db *gorm.DB, username string, admin bool) *domain.Principal {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), db, username, "x", admin)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &domain.Principal{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}
