package repository

import (
	"context"
	"testing"
	"time"

	"waverider/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
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

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Username: "rider",
		Email:    email,
		Password: "hashed-password-value",
		Role:     models.RoleAuthenticated,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, title string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:          title,
		Description:    "body of " + title,
		Category:       "Tech",
		UserID:         userID,
		AuthorUsername: "rider",
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	// Backdate explicitly so pagination ordering is deterministic.
	if err := db.Model(post).UpdateColumn("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate post: %v", err)
	}
	post.CreatedAt = createdAt
	return post
}

func testCtx() context.Context {
	return context.Background()
}
