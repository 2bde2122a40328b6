// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values assignable to a user.
const (
	RoleAuthenticated = "authenticated"
	RoleAdmin         = "admin"
)

// NotificationPrefs holds a user's notification preferences.
// Stored as a JSON column; zero value means everything enabled.
type NotificationPrefs struct {
	CommentReplies bool `json:"comment_replies"`
	PostComments   bool `json:"post_comments"`
	Newsletter     bool `json:"newsletter"`
}

// User represents a user account in the Wave Rider application.
// Email is unique and case-normalized to lowercase before every read and
// write. Username is indexed but deliberately not unique; when absent at
// signup it defaults to the email local-part.
type User struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Username      string            `gorm:"index;not null" json:"username"`
	Email         string            `gorm:"unique;not null" json:"email"`
	Password      string            `gorm:"not null" json:"-"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Role          string            `gorm:"not null;default:authenticated" json:"role"`
	Avatar        string            `json:"avatar"`
	Bio           string            `json:"bio"`
	Interests     []string          `gorm:"serializer:json" json:"interests"`
	Notifications NotificationPrefs `gorm:"serializer:json" json:"notifications"`
	GoogleID      *string           `gorm:"index" json:"google_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
	Posts         []Post            `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Favorite marks a post as favorited by a user.
// The combination of UserID and PostID must be unique.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_fav_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_fav_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
