package feedclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"waverider/internal/models"
)

// PostsPage is one fetched page of the post feed.
type PostsPage struct {
	Posts      []models.Post `json:"posts"`
	NextCursor string        `json:"next_cursor"`
}

// FetchPosts retrieves one feed page and mirrors the posts locally.
func (c *Client) FetchPosts(ctx context.Context, category string, limit int, cursor string) (*PostsPage, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if cursor != "" {
		q.Set("startAfter", cursor)
	}
	path := "/api/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page PostsPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	for _, p := range page.Posts {
		c.cache.putPost(p)
	}
	return &page, nil
}

// FetchPost retrieves a single post and mirrors it locally.
func (c *Client) FetchPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	c.cache.putPost(post)
	return &post, nil
}

// FetchComments retrieves a post's flat comment list and mirrors it.
func (c *Client) FetchComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments", postID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, err
	}
	for _, cm := range comments {
		c.cache.putComment(cm)
	}
	return comments, nil
}

// CreateComment posts a comment (or reply, when parentID is non-nil). A
// placeholder appears in the cache immediately under a temporary id; on
// confirmation it is replaced by the server's record, on failure removed.
func (c *Client) CreateComment(ctx context.Context, postID uint, content string, parentID *uint) (*models.Comment, *Mutation, error) {
	temp := models.Comment{
		ID:              c.cache.tempID(),
		Content:         content,
		PostID:          postID,
		ParentCommentID: parentID,
	}
	c.cache.putComment(temp)
	m := newMutation(func() { c.cache.removeComment(temp.ID) })

	body := map[string]interface{}{"content": content}
	if parentID != nil {
		body["parent_comment_id"] = *parentID
	}

	var created models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments", postID)
	if err := c.doJSON(ctx, http.MethodPost, path, body, &created); err != nil {
		m.rollback()
		return nil, m, err
	}

	c.cache.removeComment(temp.ID)
	c.cache.putComment(created)
	m.commit()
	return &created, m, nil
}

// UpdateComment edits a comment's content optimistically.
func (c *Client) UpdateComment(ctx context.Context, postID, commentID uint, content string) (*models.Comment, *Mutation, error) {
	prior, ok := c.cache.mutateComment(commentID, func(cm *models.Comment) {
		cm.Content = content
	})
	var m *Mutation
	if ok {
		m = newMutation(func() { c.cache.putComment(prior) })
	} else {
		m = newMutation(nil)
	}

	var updated models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments/%d", postID, commentID)
	err := c.doJSON(ctx, http.MethodPut, path, map[string]string{"content": content}, &updated)
	if err != nil {
		m.rollback()
		return nil, m, err
	}

	c.cache.putComment(updated)
	m.commit()
	return &updated, m, nil
}

// deleteResult matches the server's delete-comment response.
type deleteResult struct {
	CommentID  uint   `json:"comment_id"`
	DeletedIDs []uint `json:"deleted_ids"`
}

// DeleteComment removes a comment optimistically. The server also cascades
// to replies; those are evicted from the cache once the response names them.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID uint) (*Mutation, error) {
	prior, ok := c.cache.removeComment(commentID)
	var m *Mutation
	if ok {
		m = newMutation(func() { c.cache.putComment(prior) })
	} else {
		m = newMutation(nil)
	}

	var result deleteResult
	path := fmt.Sprintf("/api/posts/%d/comments/%d", postID, commentID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &result); err != nil {
		m.rollback()
		return m, err
	}

	for _, id := range result.DeletedIDs {
		c.cache.removeComment(id)
	}
	m.commit()
	return m, nil
}

// LikeComment records a like optimistically, bumping the local count before
// the server confirms.
func (c *Client) LikeComment(ctx context.Context, postID, commentID uint) (*models.Comment, *Mutation, error) {
	return c.setCommentLike(ctx, postID, commentID, true)
}

// UnlikeComment removes a like optimistically.
func (c *Client) UnlikeComment(ctx context.Context, postID, commentID uint) (*models.Comment, *Mutation, error) {
	return c.setCommentLike(ctx, postID, commentID, false)
}

func (c *Client) setCommentLike(ctx context.Context, postID, commentID uint, liked bool) (*models.Comment, *Mutation, error) {
	prior, ok := c.cache.mutateComment(commentID, func(cm *models.Comment) {
		if liked {
			cm.LikesCount++
		} else if cm.LikesCount > 0 {
			cm.LikesCount--
		}
	})
	var m *Mutation
	if ok {
		m = newMutation(func() { c.cache.putComment(prior) })
	} else {
		m = newMutation(nil)
	}

	action := "like"
	if !liked {
		action = "unlike"
	}
	var updated models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments/%d/%s", postID, commentID, action)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &updated); err != nil {
		m.rollback()
		return nil, m, err
	}

	c.cache.putComment(updated)
	m.commit()
	return &updated, m, nil
}

// DeletePost removes a post optimistically.
func (c *Client) DeletePost(ctx context.Context, postID uint) (*Mutation, error) {
	prior, ok := c.cache.removePost(postID)
	var m *Mutation
	if ok {
		m = newMutation(func() { c.cache.putPost(prior) })
	} else {
		m = newMutation(nil)
	}

	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), nil, nil); err != nil {
		m.rollback()
		return m, err
	}
	m.commit()
	return m, nil
}
