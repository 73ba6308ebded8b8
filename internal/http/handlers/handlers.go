// Package handlers exposes the marketplace over HTTP.
//
// Handlers are transport-thin: they read the Principal resolved by
// middleware.Authenticate, bind and validate input, call the services with
// the request context, and translate results into JSON responses.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/apple-market/internal/domain"
	"github.com/tbourn/apple-market/internal/http/middleware"
	"github.com/tbourn/apple-market/internal/services"
)

// AuthService defines the account operations consumed by HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
	Logout(ctx context.Context, p *domain.Principal) error
}

// ListingService defines the product listing operations consumed by HTTP
// handlers.
type ListingService interface {
	List(ctx context.Context, modelFilter string) ([]domain.Product, error)
	// Stats returns the count and highest id of what List would return.
	Stats(ctx context.Context, modelFilter string) (int64, uint, error)
	Create(ctx context.Context, p *domain.Principal, in services.ProductInput, files []services.Upload) (*domain.Product, error)
	Delete(ctx context.Context, p *domain.Principal, id uint) error
}

// MessagingService defines the conversation operations consumed by HTTP
// handlers.
type MessagingService interface {
	Post(ctx context.Context, p *domain.Principal, conversationUserID uint, text string) (*domain.ChatMessage, error)
	Conversation(ctx context.Context, p *domain.Principal, conversationUserID uint) ([]domain.ChatMessage, error)
	Inbox(ctx context.Context, p *domain.Principal) ([]domain.ConversationSummary, error)
	Stats(ctx context.Context, p *domain.Principal, conversationUserID uint) (int64, uint, error)
}

// Options carries transport settings that are not service concerns.
type Options struct {
	// CookieSecure marks the session cookie Secure.
	CookieSecure bool
	// UploadsURL is the public URL prefix of stored photos.
	UploadsURL string
	// MaxUploadBytes is advertised in the product form descriptor and caps
	// the in-memory part of multipart parsing.
	MaxUploadBytes int64
}

const (
	defaultUploadsURL      = "/uploads"
	defaultMultipartMemory = 8 << 20
)

// Handlers groups the HTTP endpoints of the marketplace.
type Handlers struct {
	auth     AuthService
	listings ListingService
	messages MessagingService
	opts     Options
}

// New constructs a Handlers instance bound to the given services.
func New(auth AuthService, listings ListingService, messages MessagingService, opts Options) *Handlers {
	if opts.UploadsURL == "" {
		opts.UploadsURL = defaultUploadsURL
	}
	return &Handlers{auth: auth, listings: listings, messages: messages, opts: opts}
}

// principal returns the caller resolved by middleware, or nil.
func principal(c *gin.Context) *domain.Principal {
	return middleware.PrincipalFrom(c)
}

// requireAdmin writes the appropriate error and returns false unless the
// caller is an administrator.
func requireAdmin(c *gin.Context) (*domain.Principal, bool) {
	p := principal(c)
	if err := services.RequireAdmin(p); err != nil {
		failErr(c, err, "")
		return nil, false
	}
	return p, true
}

// requireLogin writes the appropriate error and returns false for an
// anonymous caller.
func requireLogin(c *gin.Context) (*domain.Principal, bool) {
	p := principal(c)
	if err := services.RequireLogin(p); err != nil {
		failErr(c, err, "")
		return nil, false
	}
	return p, true
}

// bind decodes a form or JSON body into dst by content type. It writes 400
// for malformed input, 413 for an oversized body, and returns false.
func bind(c *gin.Context, dst any) bool {
	err := c.ShouldBind(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		err = fmt.Errorf("%w: %v", errBadForm, err)
	}
	failErr(c, err, "")
	return false
}

// FormField describes one input of a form descriptor.
type FormField struct {
	Name     string   `json:"name" example:"username"`
	Type     string   `json:"type" example:"text"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// FormDescriptor tells a client how to submit a form.
type FormDescriptor struct {
	Action  string      `json:"action" example:"/login"`
	Method  string      `json:"method" example:"POST"`
	Enctype string      `json:"enctype" example:"application/x-www-form-urlencoded"`
	Fields  []FormField `json:"fields"`
	// MaxBytes is the request body cap, when one applies.
	MaxBytes int64 `json:"max_bytes,omitempty"`
}
