// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// CategoryAll is the sentinel category meaning "no category filter".
const CategoryAll = "All"

// Post represents a published article in the Wave Rider application.
//
// AuthorUsername is a point-in-time snapshot taken at creation; later
// username changes do not retroactively update old posts. ImageURL and
// ImageHash are either both set or both empty.
type Post struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Title             string `gorm:"not null" json:"title"`
	Description       string `gorm:"type:text;not null" json:"description"`
	Category          string `gorm:"not null;index" json:"category"`
	ImageURL          string `json:"image_url"`
	ImageHash         string `gorm:"index" json:"image_hash"`
	AdditionalContent string `gorm:"type:text" json:"additional_content"`
	GraphContent      string `gorm:"type:text" json:"graph_content"`
	UserID            uint   `gorm:"not null;index" json:"user_id"`
	AuthorUsername    string `gorm:"not null" json:"author_username"`
	User              User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// FavoritesCount is not persisted; computed at query time
	FavoritesCount int            `gorm:"->" json:"favorites_count"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
