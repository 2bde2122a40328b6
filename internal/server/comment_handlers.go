// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"time"

	"waverider/internal/models"
	"waverider/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment creates a comment on a post (protected)
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content         string `json:"content"`
		ParentCommentID *uint  `json:"parent_comment_id"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	created, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		UserID:          userID,
		PostID:          postID,
		ParentCommentID: req.ParentCommentID,
		Content:         req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(EventCommentCreated, map[string]interface{}{
		"post_id":        postID,
		"comment":        created,
		"comments_count": s.commentsCount(c, postID),
		"updated_at":     time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetComments returns all comments for a post as a flat list (public)
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(ctx, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(comments)
}

// GetCommentTree returns the threaded view of a post's comments (public).
// Supports ?depth= to cap reply nesting and ?limit=/?offset= over root
// comments.
func (s *Server) GetCommentTree(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 20)
	depth := c.QueryInt("depth", 0)

	tree, err := s.commentService.ListCommentThread(ctx, postID, depth, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(tree)
}

// UpdateComment updates a comment (author only)
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	updated, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		UserID:    userID,
		PostID:    postID,
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(updated)
}

// DeleteComment deletes a comment and its reply subtree (author or admin)
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	deleted, err := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    userID,
		PostID:    postID,
		CommentID: commentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(EventCommentDeleted, map[string]interface{}{
		"post_id":        postID,
		"comment_id":     commentID,
		"deleted_ids":    deleted.DeletedIDs,
		"comments_count": s.commentsCount(c, postID),
		"updated_at":     time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.JSON(fiber.Map{
		"comment_id":  commentID,
		"deleted_ids": deleted.DeletedIDs,
	})
}

// LikeComment handles POST /api/posts/:id/comments/:commentId/like.
// Repeated likes by the same user are no-ops.
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return s.setCommentLike(c, true)
}

// UnlikeComment handles POST /api/posts/:id/comments/:commentId/unlike.
// Unliking a comment the user never liked is a no-op.
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	return s.setCommentLike(c, false)
}

func (s *Server) setCommentLike(c *fiber.Ctx, liked bool) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var comment *models.Comment
	if liked {
		comment, err = s.commentService.LikeComment(ctx, userID, postID, commentID)
	} else {
		comment, err = s.commentService.UnlikeComment(ctx, userID, postID, commentID)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(EventCommentLikeUpdated, map[string]interface{}{
		"post_id":     postID,
		"comment_id":  commentID,
		"likes_count": comment.LikesCount,
		"updated_at":  time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.JSON(comment)
}

// commentsCount is a best-effort live count for feed events.
func (s *Server) commentsCount(c *fiber.Ctx, postID uint) int64 {
	count, err := s.commentRepo.CountByPost(c.UserContext(), postID)
	if err != nil {
		return 0
	}
	return count
}
