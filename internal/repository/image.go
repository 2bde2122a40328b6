package repository

import (
	"context"
	"errors"

	"waverider/internal/models"

	"gorm.io/gorm"
)

// ImageRepository defines storage operations for uploaded image metadata.
// The binary payloads live in the blob store; rows here are keyed by the
// content hash so identical uploads collapse into one record.
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByHash(ctx context.Context, hash string) (*models.Image, error)
	DeleteByHash(ctx context.Context, hash string) error
	CountPostsUsingHash(ctx context.Context, hash string) (int64, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository returns a repository implementation for image metadata.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Concurrent upload of the same bytes; the existing row wins.
			return nil
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *imageRepository) GetByHash(ctx context.Context, hash string) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &image, nil
}

func (r *imageRepository) DeleteByHash(ctx context.Context, hash string) error {
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).Delete(&models.Image{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CountPostsUsingHash reports how many live posts still reference the hash.
// Blob cleanup only runs when this drops to zero.
func (r *imageRepository) CountPostsUsingHash(ctx context.Context, hash string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("image_hash = ?", hash).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
