package service

import (
	"context"
	"strings"

	"waverider/internal/models"
	"waverider/internal/repository"
	"waverider/internal/sanitize"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID          uint
	PostID          uint
	ParentCommentID *uint
	Content         string
}

type UpdateCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
}

// DeletedComments reports the outcome of a cascade delete: the target plus
// every descendant that went with it.
type DeletedComments struct {
	Comment    *models.Comment
	DeletedIDs []uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		isAdmin:     isAdmin,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(sanitize.Plain(in.Content))
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID); err != nil {
		return nil, err
	}

	// A reply's parent must be a live comment on the same post, otherwise
	// threads could span posts or dangle.
	if in.ParentCommentID != nil {
		ok, err := s.commentRepo.ExistsOnPost(ctx, *in.ParentCommentID, in.PostID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewInvalidParentError("Parent comment does not exist on this post")
		}
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:         content,
		UserID:          in.UserID,
		PostID:          in.PostID,
		ParentCommentID: in.ParentCommentID,
		AuthorUsername:  author.Username,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a post's comments flat, oldest first, with the
// LikedBy sets filled in.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.fillLikedBy(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// ListCommentThread returns a post's comments as a forest, optionally
// depth-pruned, with root-level pagination.
func (s *CommentService) ListCommentThread(ctx context.Context, postID uint, depth, limit, offset int) ([]*ThreadNode, error) {
	comments, err := s.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	roots := FlattenToDepth(BuildThread(comments), depth)

	if offset > 0 {
		if offset >= len(roots) {
			return []*ThreadNode{}, nil
		}
		roots = roots[offset:]
	}
	if limit > 0 && limit < len(roots) {
		roots = roots[:limit]
	}
	return roots, nil
}

func (s *CommentService) GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if err := s.fillLikedBy(ctx, []*models.Comment{comment}); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}

	content := strings.TrimSpace(sanitize.Plain(in.Content))
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.GetComment(ctx, in.PostID, in.CommentID)
}

// DeleteComment removes a comment and its whole reply subtree in one
// transaction, so no reply is ever left pointing at a deleted parent.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*DeletedComments, error) {
	comment, err := s.GetComment(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.UserID {
		var admin bool
		if s.isAdmin != nil {
			admin, err = s.isAdmin(ctx, in.UserID)
			if err != nil {
				return nil, err
			}
		}
		if !admin {
			return nil, models.NewForbiddenError("You can only delete your own comments")
		}
	}

	all, err := s.commentRepo.ListByPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	ids := collectSubtreeIDs(all, in.CommentID)
	if err := s.commentRepo.DeleteMany(ctx, in.PostID, ids); err != nil {
		return nil, err
	}
	return &DeletedComments{Comment: comment, DeletedIDs: ids}, nil
}

// LikeComment records the user's like; repeats are no-ops. Returns the
// refreshed comment.
func (s *CommentService) LikeComment(ctx context.Context, userID, postID, commentID uint) (*models.Comment, error) {
	if _, err := s.GetComment(ctx, postID, commentID); err != nil {
		return nil, err
	}
	if err := s.commentRepo.Like(ctx, userID, commentID); err != nil {
		return nil, err
	}
	return s.GetComment(ctx, postID, commentID)
}

func (s *CommentService) UnlikeComment(ctx context.Context, userID, postID, commentID uint) (*models.Comment, error) {
	if _, err := s.GetComment(ctx, postID, commentID); err != nil {
		return nil, err
	}
	if err := s.commentRepo.Unlike(ctx, userID, commentID); err != nil {
		return nil, err
	}
	return s.GetComment(ctx, postID, commentID)
}

func (s *CommentService) fillLikedBy(ctx context.Context, comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	byComment, err := s.commentRepo.LikerIDsByComment(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range comments {
		c.LikedBy = byComment[c.ID]
		if c.LikedBy == nil {
			c.LikedBy = []uint{}
		}
	}
	return nil
}

// collectSubtreeIDs returns the target id plus every descendant, walking
// the parent links breadth-first.
func collectSubtreeIDs(all []*models.Comment, rootID uint) []uint {
	children := make(map[uint][]uint, len(all))
	for _, c := range all {
		if c.ParentCommentID != nil {
			children[*c.ParentCommentID] = append(children[*c.ParentCommentID], c.ID)
		}
	}

	ids := []uint{rootID}
	seen := map[uint]struct{}{rootID: {}}
	for i := 0; i < len(ids); i++ {
		for _, child := range children[ids[i]] {
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			ids = append(ids, child)
		}
	}
	return ids
}
