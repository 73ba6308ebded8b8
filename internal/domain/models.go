// Package domain defines the persistence models for users, phone listings,
// listing photos, chat messages, and login sessions. These types are mapped
// with GORM and form the core data layer of the marketplace.
package domain

import "time"

// Sender tags for ChatMessage.Sender.
const (
	SenderAdmin = "admin"
	SenderUser  = "user"
)

// User is a registered account. Usernames are unique (enforced by the
// database). The password hash is never serialized.
//
// Fields:
//   - ID: autoincrement primary key; also identifies the user's conversation.
//   - Username: unique login name.
//   - PasswordHash: bcrypt hash of the password.
//   - IsAdmin: grants access to listing management and every conversation.
type User struct {
	ID           uint      `json:"id"         gorm:"primaryKey"`
	Username     string    `json:"username"   gorm:"type:varchar(150);not null;uniqueIndex:ux_users_username"`
	PasswordHash string    `json:"-"          gorm:"column:password;type:varchar(200);not null"`
	IsAdmin      bool      `json:"is_admin"   gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Product is a single phone listing. It exclusively owns its images: deleting
// a product removes its image rows (cascade) and the service removes the
// backing files.
//
// Memory is stored as free text ("128", "256 GB") so both spellings used by
// sellers round-trip unchanged.
type Product struct {
	ID          uint           `json:"id"          gorm:"primaryKey"`
	Model       string         `json:"model"       gorm:"type:varchar(50);index:idx_products_model"`
	Price       float64        `json:"price"`
	Condition   string         `json:"condition"   gorm:"type:varchar(50)"`
	Battery     int            `json:"battery"`
	Memory      string         `json:"memory"      gorm:"type:varchar(50)"`
	Color       string         `json:"color"       gorm:"type:varchar(50)"`
	Package     string         `json:"package"     gorm:"type:varchar(50)"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	Images      []ProductImage `json:"images"      gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// ProductImage is one photo of a product. Filename is the sanitized name of
// the file inside the upload directory.
type ProductImage struct {
	ID        uint   `json:"id"         gorm:"primaryKey"`
	Filename  string `json:"filename"   gorm:"type:varchar(200);not null"`
	ProductID uint   `json:"product_id" gorm:"not null;index:idx_product_images_product"`
}

// TableName returns the database table name for ProductImage.
func (ProductImage) TableName() string { return "product_images" }

// ChatMessage is one entry of the conversation between a user and the
// administrator. Messages are append-only. UserID names the conversation,
// whoever authored the message; Sender tells the authors apart.
type ChatMessage struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Text      string    `json:"text"       gorm:"type:text;not null"`
	Sender    string    `json:"sender"     gorm:"type:varchar(10);not null;check:sender IN ('admin','user')"`
	UserID    uint      `json:"user_id"    gorm:"not null;index:idx_chat_messages_user"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// Session is the server-side record of a login. The session token carries
// its ID; deleting the row logs the token out.
type Session struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    uint      `gorm:"not null;index:idx_sessions_user"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// ConversationSummary describes one conversation in the administrator inbox.
type ConversationSummary struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	MessageCount  int64  `json:"message_count"`
	LastMessageID uint   `json:"last_message_id"`
}
