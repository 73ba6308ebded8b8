// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, and session resolution.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/apple-market/docs"
	"github.com/tbourn/apple-market/internal/auth"
	"github.com/tbourn/apple-market/internal/config"
	"github.com/tbourn/apple-market/internal/http/handlers"
	"github.com/tbourn/apple-market/internal/http/middleware"
	"github.com/tbourn/apple-market/internal/services"
	"github.com/tbourn/apple-market/internal/storage"
)

// UploadsURL is the public prefix under which product photos are served.
const UploadsURL = "/uploads"

var corsHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}

// Services bundles the application services behind the HTTP layer.
type Services struct {
	Auth     *services.AuthService
	Listings *services.ListingService
	Messages *services.MessagingService
}

// NewServices builds the services from configuration: the photo store under
// cfg.UploadDir, the bcrypt hasher and the session token signer.
func NewServices(db *gorm.DB, cfg config.Config) (*Services, error) {
	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	signer, err := auth.NewTokenSigner(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}
	return &Services{
		Auth: services.NewAuthService(db, auth.NewHasher(cfg.Session.BcryptCost), signer, cfg.Session.TTL,
			log.With().Str("component", "auth").Logger()),
		Listings: services.NewListingService(db, files, cfg.StrictModels,
			log.With().Str("component", "listings").Logger()),
		Messages: services.NewMessagingService(db, cfg.MaxMessageRunes,
			log.With().Str("component", "messaging").Logger()),
	}, nil
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and returns the services it built.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Compression (photos and /metrics excluded)
//  8. CORS and Security headers
//  9. Session resolution
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) (*Services, error) {
	svc, err := NewServices(db, cfg)
	if err != nil {
		return nil, err
	}

	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (photo uploads are the largest bodies)
	r.Use(limitBody(cfg.MaxUploadBytes))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compression; photos are already compressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{UploadsURL + "/", "/metrics"})))

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		// Listed origins may send the session cookie.
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:               cfg.Security.EnableHSTS,
		HSTSMaxAge:               cfg.Security.HSTSMaxAge,
		EnablePolicy:             true,
		PrivateWhenAuthenticated: true,
	}))

	// 9) Principal for every request; anonymous when no valid session
	r.Use(middleware.Authenticate(svc.Auth))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Photos
	r.Static(UploadsURL, cfg.UploadDir)

	h := handlers.New(svc.Auth, svc.Listings, svc.Messages, handlers.Options{
		CookieSecure:   cfg.Session.CookieSecure,
		UploadsURL:     UploadsURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	r.GET("/", h.ListProducts)

	// Accounts
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)
	r.GET(handlers.LoginPath, h.LoginForm)
	r.POST(handlers.LoginPath, h.Login)
	r.GET("/logout", h.Logout)

	// Administration
	admin := r.Group("/admin")
	{
		admin.GET("/add", h.ProductForm)
		admin.POST("/add", h.CreateProduct)
		admin.POST("/delete/:product_id", h.DeleteProduct)
		admin.GET("/chats", h.Inbox)
	}

	// Conversations
	r.GET("/chat/:user_id", h.Conversation)
	r.POST("/chat/:user_id", h.PostMessage)

	return svc, nil
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. maxBytes <= 0 disables
// the cap.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
