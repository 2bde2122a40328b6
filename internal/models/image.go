package models

import (
	"time"
)

// Image is the metadata record for a content-addressed blob held by the
// object store. Hash is the sha256 of the master bytes; two uploads of the
// same image share one record.
type Image struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Hash         string    `gorm:"uniqueIndex;not null" json:"hash"`
	ContentType  string    `gorm:"not null" json:"content_type"`
	Bytes        int64     `json:"bytes"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	OriginalKey  string    `gorm:"not null" json:"original_key"`
	ThumbKey     string    `json:"thumb_key"`
	URL          string    `gorm:"not null" json:"url"`
	UploadedByID uint      `gorm:"index" json:"uploaded_by_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
