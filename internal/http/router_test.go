package httpapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/apple-market/internal/config"
	"github.com/tbourn/apple-market/internal/http/handlers"
	"github.com/tbourn/apple-market/internal/http/middleware"
	"github.com/tbourn/apple-market/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
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

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1 << 20,
		Session: config.SessionConfig{
			Secret:     "router-test-secret-0123456789",
			TTL:        time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		OTEL: config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config) (*gin.Engine, *Services) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc, err := RegisterRoutes(r, newTestDB(t), cfg)
	if err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	return r, svc
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newRouter(t, testConfig(t))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected request id and security headers: %v", w.Header())
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("GET /metrics bad: code=%d", w.Code)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	var er handlers.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != handlers.ErrCodeNotFound {
		t.Fatalf("404 envelope: %+v err=%v", er, err)
	}

	w = serve(r, httptest.NewRequest(http.MethodPost, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}

	// Swagger is off by default.
	w = serve(r, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be disabled, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig(t)
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://shop.test"}}
	r, _ := newRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	// httptest requests target example.com, so the origin must differ to be cross-origin.
	req.Header.Set("Origin", "http://shop.test")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://shop.test" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("listed origins should allow credentials, got %q", got)
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	cfg := testConfig(t)
	cfg.SwaggerEnabled = true
	r, _ := newRouter(t, cfg)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/admin/add") {
		t.Fatalf("GET /swagger/doc.json = %d", w.Code)
	}
}

func TestRegisterRoutes_BadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.Secret = "short"
	if _, err := RegisterRoutes(gin.New(), newTestDB(t), cfg); err == nil {
		t.Fatalf("expected error for a short session secret")
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	}

	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", handler)
	w := serve(r, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}

	r = gin.New()
	r.Use(limitBody(0))
	r.POST("/echo", handler)
	w = serve(r, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusOK {
		t.Fatalf("limitBody(0) should not cap, got %d", w.Code)
	}
}

// End to end: an administrator lists a phone with a photo, the photo is
// served from /uploads, a buyer asks about it and the admin sees the inbox.
func TestPipeline_EndToEnd(t *testing.T) {
	r, svc := newRouter(t, testConfig(t))
	ctx := context.Background()

	if err := svc.Auth.EnsureAdmin(ctx, "root", "root-pass"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	login := func(user, pass string) *http.Cookie {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username="+user+"&password="+pass))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := serve(r, req)
		if w.Code != http.StatusOK {
			t.Fatalf("login %s -> %d %s", user, w.Code, w.Body.String())
		}
		for _, ck := range w.Result().Cookies() {
			if ck.Name == middleware.SessionCookie {
				return ck
			}
		}
		t.Fatalf("login %s: no session cookie", user)
		return nil
	}
	adminCookie := login("root", "root-pass")

	// Create a listing with one photo.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("model", "iPhone 13")
	_ = mw.WriteField("price", "450")
	fw, _ := mw.CreateFormFile("images", "My Photo.JPG")
	_, _ = io.WriteString(fw, "jpeg-bytes")
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/admin/add", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(adminCookie)
	w := serve(r, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d %s", w.Code, w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); cc != "private, no-store" {
		t.Fatalf("authenticated response Cache-Control = %q", cc)
	}
	var view handlers.ProductView
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if len(view.ImageURLs) != 1 || view.ImageURLs[0] != "/uploads/My_Photo.JPG" {
		t.Fatalf("image urls: %+v", view.ImageURLs)
	}

	// The photo is served without compression.
	req = httptest.NewRequest(http.MethodGet, view.ImageURLs[0], nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w = serve(r, req)
	if w.Code != http.StatusOK || w.Body.String() != "jpeg-bytes" || w.Header().Get("Content-Encoding") != "" {
		t.Fatalf("photo -> %d enc=%q body=%q", w.Code, w.Header().Get("Content-Encoding"), w.Body.String())
	}
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/uploads/missing.jpg", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("missing photo -> %d", w.Code)
	}

	// The listing is public and compressed for clients that accept gzip.
	req = httptest.NewRequest(http.MethodGet, "/?model=iPhone+13", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w = serve(r, req)
	if w.Code != http.StatusOK || w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("listing -> %d enc=%q", w.Code, w.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	var listing handlers.ListProductsResponse
	if err := json.NewDecoder(zr).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Products) != 1 || listing.Products[0].ID != view.ID {
		t.Fatalf("listing: %+v", listing)
	}

	// A buyer registers, logs in and asks a question.
	req = httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"username":"buyer","password":"buyer-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	if w := serve(r, req); w.Code != http.StatusCreated {
		t.Fatalf("register -> %d", w.Code)
	}
	buyerCookie := login("buyer", "buyer-pass")
	var buyer handlers.LoginResponse
	{
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=buyer&password=buyer-pass"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		_ = json.Unmarshal(serve(r, req).Body.Bytes(), &buyer)
	}
	chatPath := fmt.Sprintf("/chat/%d", buyer.Principal.UserID)
	req = httptest.NewRequest(http.MethodPost, chatPath, strings.NewReader("text=Still+available%3F"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(buyerCookie)
	if w := serve(r, req); w.Code != http.StatusCreated {
		t.Fatalf("post message -> %d %s", w.Code, w.Body.String())
	}

	// The buyer cannot open the inbox; the admin can.
	req = httptest.NewRequest(http.MethodGet, "/admin/chats", nil)
	req.AddCookie(buyerCookie)
	if w := serve(r, req); w.Code != http.StatusForbidden {
		t.Fatalf("buyer inbox -> %d", w.Code)
	}
	req = httptest.NewRequest(http.MethodGet, "/admin/chats", nil)
	req.AddCookie(adminCookie)
	w = serve(r, req)
	var inbox handlers.InboxResponse
	_ = json.Unmarshal(w.Body.Bytes(), &inbox)
	if w.Code != http.StatusOK || len(inbox.Conversations) != 1 || inbox.Conversations[0].Username != "buyer" {
		t.Fatalf("admin inbox -> %d %+v", w.Code, inbox)
	}

	// Anonymous browsers are sent to the login page.
	req = httptest.NewRequest(http.MethodGet, chatPath, nil)
	req.Header.Set("Accept", "text/html")
	if w := serve(r, req); w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous browser -> %d %q", w.Code, w.Header().Get("Location"))
	}
}
