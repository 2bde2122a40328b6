// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post in the Wave Rider application.
//
// ParentCommentID links a reply to its parent; nil marks a top-level
// comment. A parent must exist on the same post, so the comments of a post
// always form a forest rooted at nil.
type Comment struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Content         string `gorm:"type:text;not null" json:"content"`
	UserID          uint   `gorm:"not null;index" json:"user_id"`
	PostID          uint   `gorm:"not null;index" json:"post_id"`
	ParentCommentID *uint  `gorm:"index" json:"parent_comment_id,omitempty"`
	AuthorUsername  string `gorm:"not null" json:"author_username"`
	User            User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// LikedBy holds the ids of users who liked this comment; populated by the
	// repository, never persisted as a column.
	LikedBy   []uint         `gorm:"-" json:"liked_by"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommentLike represents a user's like on a comment.
// The combination of UserID and CommentID must be unique; unliking removes
// the row outright so repeated toggles stay idempotent.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
