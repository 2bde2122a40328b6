package repository

import (
	"context"
	"errors"

	"waverider/internal/cache"
	"waverider/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments and
// comment likes.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	ExistsOnPost(ctx context.Context, commentID, postID uint) (bool, error)
	Update(ctx context.Context, comment *models.Comment) error
	DeleteMany(ctx context.Context, postID uint, ids []uint) error
	CountByPost(ctx context.Context, postID uint) (int64, error)

	Like(ctx context.Context, userID, commentID uint) error
	Unlike(ctx context.Context, userID, commentID uint) error
	LikerIDs(ctx context.Context, commentID uint) ([]uint, error)
	LikerIDsByComment(ctx context.Context, commentIDs []uint) (map[uint][]uint, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	// The post's cached copy carries comments_count.
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.applyLikesCount(r.db.WithContext(ctx)).
		Preload("User").
		First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest-first so thread assembly sees
// every parent before its children.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.applyLikesCount(r.db.WithContext(ctx)).
		Preload("User").
		Where("post_id = ?", postID).
		Order("comments.created_at ASC, comments.id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) ExistsOnPost(ctx context.Context, commentID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND post_id = ?", commentID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteMany soft-deletes a set of comments and hard-deletes their like
// rows in one transaction. Callers pass a comment plus its descendants so a
// removed subtree never leaves orphaned replies behind.
func (r *commentRepository) DeleteMany(ctx context.Context, postID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// applyLikesCount adds the likes_count subquery to a comment query.
func (r *commentRepository) applyLikesCount(db *gorm.DB) *gorm.DB {
	return db.Select("comments.*, " +
		"(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) as likes_count")
}

func (r *commentRepository) Like(ctx context.Context, userID, commentID uint) error {
	// INSERT ... ON CONFLICT DO NOTHING is atomic, so concurrent double-taps
	// settle on a single like row.
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO comment_likes (user_id, comment_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, comment_id) DO NOTHING`,
		userID, commentID, nowUTC(),
	).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) Unlike(ctx context.Context, userID, commentID uint) error {
	// Hard delete; a fresh like should insert a fresh row.
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&models.CommentLike{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) LikerIDs(ctx context.Context, commentID uint) ([]uint, error) {
	var userIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("comment_id = ?", commentID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return userIDs, nil
}

func (r *commentRepository) LikerIDsByComment(ctx context.Context, commentIDs []uint) (map[uint][]uint, error) {
	if len(commentIDs) == 0 {
		return map[uint][]uint{}, nil
	}
	var likes []models.CommentLike
	err := r.db.WithContext(ctx).
		Where("comment_id IN ?", commentIDs).
		Order("created_at ASC").
		Find(&likes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	byComment := make(map[uint][]uint, len(commentIDs))
	for _, l := range likes {
		byComment[l.CommentID] = append(byComment[l.CommentID], l.UserID)
	}
	return byComment, nil
}
