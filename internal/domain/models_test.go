package domain

import (
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(User{}).TableName():         "users",
		(Product{}).TableName():      "products",
		(ProductImage{}).TableName(): "product_images",
		(ChatMessage{}).TableName():  "chat_messages",
		(Session{}).TableName():      "sessions",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&User{}, &Product{}, &ProductImage{}, &ChatMessage{}, &Session{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, tbl := range []any{&User{}, &Product{}, &ProductImage{}, &ChatMessage{}, &Session{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&User{}, "ux_users_username") {
		t.Fatalf("expected unique index ux_users_username on users")
	}
	if !m.HasIndex(&Product{}, "idx_products_model") {
		t.Fatalf("expected index idx_products_model on products")
	}
	if !m.HasIndex(&ChatMessage{}, "idx_chat_messages_user") {
		t.Fatalf("expected index idx_chat_messages_user on chat_messages")
	}

	// Username uniqueness is enforced by the store.
	if err := db.Create(&User{Username: "alice", PasswordHash: "h"}).Error; err != nil {
		t.Fatalf("insert alice: %v", err)
	}
	if err := db.Create(&User{Username: "alice", PasswordHash: "h2"}).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate username")
	}

	// Sender check constraint.
	if err := db.Create(&ChatMessage{Text: "hi", Sender: "robot", UserID: 1}).Error; err == nil {
		t.Fatalf("expected check constraint failure for unknown sender")
	}

	// Has-many association: images are inserted with their product.
	p := &Product{Model: "iPhone 13", Price: 499, Images: []ProductImage{{Filename: "a.jpg"}, {Filename: "b.jpg"}}}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("insert product: %v", err)
	}
	var got Product
	if err := db.Preload("Images").First(&got, p.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if len(got.Images) != 2 || got.Images[0].ProductID != p.ID {
		t.Fatalf("unexpected images: %+v", got.Images)
	}
}

func TestIsAllowedModel(t *testing.T) {
	if len(AllowedModels) != 33 {
		t.Fatalf("expected 33 allowed models, got %d", len(AllowedModels))
	}
	for _, ok := range []string{"iPhone 8", "iPhone 13", "iPhone 17 Pro Max"} {
		if !IsAllowedModel(ok) {
			t.Fatalf("%q should be allowed", ok)
		}
	}
	for _, bad := range []string{"", "iphone 13", "iPhone 13 ", "Pixel 8", "iPhone 7"} {
		if IsAllowedModel(bad) {
			t.Fatalf("%q should not be allowed", bad)
		}
	}
}

func TestPrincipal_SenderAndAccess(t *testing.T) {
	var anon *Principal
	if anon.CanAccessConversation(1) {
		t.Fatalf("anonymous must not access conversations")
	}
	if anon.Sender() != SenderUser {
		t.Fatalf("nil principal sender = %q", anon.Sender())
	}

	user := &Principal{UserID: 7}
	if !user.CanAccessConversation(7) || user.CanAccessConversation(8) {
		t.Fatalf("user access unexpected")
	}
	if user.Sender() != SenderUser {
		t.Fatalf("user sender = %q", user.Sender())
	}

	admin := &Principal{UserID: 1, IsAdmin: true}
	if !admin.CanAccessConversation(7) || !admin.CanAccessConversation(8) {
		t.Fatalf("admin must access every conversation")
	}
	if admin.Sender() != SenderAdmin {
		t.Fatalf("admin sender = %q", admin.Sender())
	}
}
