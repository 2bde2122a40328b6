package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"waverider/internal/config"
	"waverider/internal/models"
	"waverider/internal/notifications"
	"waverider/internal/repository"
	"waverider/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Sup3r-Secret-Pass!"

func setupServerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Favorite{},
		&models.Image{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// fakeBlobStore keeps blobs in a map so handler tests never talk to MinIO.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(_ context.Context, key, _ string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeBlobStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeBlobStore) URL(key string) string {
	return "http://blobs.local/" + key
}

// newTestServer wires a Server against in-memory sqlite without Redis or a
// real blob store. Routes are registered without the middleware stack so
// individual requests stay cheap; auth still runs through AuthRequired.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	db := setupServerTestDB(t)

	cfg := &config.Config{
		JWTSecret: "server-test-secret-0123456789abcdef",
		Env:       "test",
		Port:      "0",
	}

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		imageRepo:   repository.NewImageRepository(db),
		blobStore:   newFakeBlobStore(),
		hub:         notifications.NewHub(),
	}
	s.imageService = service.NewImageService(s.imageRepo, s.blobStore, cfg)
	s.postService = service.NewPostService(s.postRepo, s.userRepo, s.imageRepo, s.imageService, s.isAdminByUserID)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.userRepo, s.isAdminByUserID)
	s.userService = service.NewUserService(s.userRepo, s.postRepo)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// newTestServerWithRedis additionally wires a miniredis-backed client so
// tests can exercise token revocation and WebSocket tickets.
func newTestServerWithRedis(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	s, app := newTestServer(t)

	mr := miniredis.RunT(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = s.redis.Close() })
	return s, app
}

func createServerTestUser(t *testing.T, s *Server, email, username, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func authToken(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// doJSON issues a request with an optional JSON body and bearer token, and
// decodes the response body into out when non-nil.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp
}
