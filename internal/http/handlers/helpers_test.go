package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/apple-market/internal/auth"
	"github.com/tbourn/apple-market/internal/http/middleware"
	"github.com/tbourn/apple-market/internal/repo"
	"github.com/tbourn/apple-market/internal/services"
	"github.com/tbourn/apple-market/internal/storage"
)

const (
	testSecret    = "handlers-test-secret-0123456789"
	adminName     = "root"
	adminPassword = "admin-pass"
)

type testEnv struct {
	db    *gorm.DB
	auth  *services.AuthService
	files *storage.FileStore
	r     *gin.Engine
}

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
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

// newTestEnv wires real services over an in-memory database and a temp
// upload dir. bodyLimit > 0 caps request bodies like the router does.
func newTestEnv(t *testing.T, bodyLimit int64) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	signer, err := auth.NewTokenSigner(testSecret)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}
	authSvc := services.NewAuthService(db, auth.NewHasher(bcrypt.MinCost), signer, 0, zerolog.Nop())
	if err := authSvc.EnsureAdmin(context.Background(), adminName, adminPassword); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	h := New(
		authSvc,
		services.NewListingService(db, files, false, zerolog.Nop()),
		services.NewMessagingService(db, 20, zerolog.Nop()),
		Options{MaxUploadBytes: bodyLimit},
	)

	r := gin.New()
	r.Use(middleware.RequestID())
	if bodyLimit > 0 {
		r.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)
			c.Next()
		})
	}
	r.Use(middleware.Authenticate(authSvc))
	mount(r, h)

	return &testEnv{db: db, auth: authSvc, files: files, r: r}
}

func mount(r *gin.Engine, h *Handlers) {
	r.GET("/", h.ListProducts)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/admin/add", h.ProductForm)
	r.POST("/admin/add", h.CreateProduct)
	r.POST("/admin/delete/:product_id", h.DeleteProduct)
	r.GET("/admin/chats", h.Inbox)
	r.GET("/chat/:user_id", h.Conversation)
	r.POST("/chat/:user_id", h.PostMessage)
}

type reqOpt func(*http.Request)

func withToken(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string, opts ...reqOpt) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postJSON(path string, v any, opts ...reqOpt) *httptest.ResponseRecorder {
	b, _ := json.Marshal(v)
	return e.do(http.MethodPost, path, bytes.NewReader(b), "application/json", opts...)
}

func (e *testEnv) postForm(path, form string, opts ...reqOpt) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, path, strings.NewReader(form), "application/x-www-form-urlencoded", opts...)
}

// login returns a session token for username/password or fails the test.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	sess, err := e.auth.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return sess.Token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	return e.login(t, adminName, adminPassword)
}

// newUser registers username and returns its id and a session token.
func (e *testEnv) newUser(t *testing.T, username string) (uint, string) {
	t.Helper()
	u, err := e.auth.Register(context.Background(), username, "pw-"+username)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u.ID, e.login(t, username, "pw-"+username)
}

type filePart struct {
	name    string
	content string
}

// multipartBody builds a multipart body with text fields and "images" files.
func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(imagesField, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = io.WriteString(fw, f.content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, w.Body.String())
	}
	return v
}

func itoa(id uint) string { return fmt.Sprint(id) }
