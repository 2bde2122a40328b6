// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"io"
	"time"

	"waverider/internal/models"
	"waverider/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	q := c.Query("q")
	if q == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Search query is required"))
	}

	page := parsePagination(c, 10)

	posts, err := s.postService.SearchPosts(ctx, q, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// CreatePost handles POST /api/posts (multipart, optional image file)
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title             string `json:"title" form:"title"`
		Description       string `json:"description" form:"description"`
		Category          string `json:"category" form:"category"`
		AdditionalContent string `json:"additional_content" form:"additional_content"`
		GraphContent      string `json:"graph_content" form:"graph_content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	input := service.CreatePostInput{
		UserID:            userID,
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		AdditionalContent: req.AdditionalContent,
		GraphContent:      req.GraphContent,
	}

	image, err := readImageFormFile(c, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	input.Image = image

	post, err := s.postService.CreatePost(ctx, input)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(EventPostCreated, map[string]interface{}{
		"post_id":    post.ID,
		"author_id":  post.UserID,
		"category":   post.Category,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// GetPosts handles GET /api/posts?category=&limit=&startAfter=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	page, err := s.postService.ListPosts(ctx, service.ListPostsInput{
		Category:   c.Query("category"),
		Limit:      c.QueryInt("limit", 0),
		StartAfter: c.Query("startAfter"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userIDParam, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(ctx, userIDParam, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// UpdatePost handles PUT /api/posts/:id (owner or admin)
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title             string  `json:"title" form:"title"`
		Description       string  `json:"description" form:"description"`
		Category          string  `json:"category" form:"category"`
		AdditionalContent *string `json:"additional_content" form:"additional_content"`
		GraphContent      *string `json:"graph_content" form:"graph_content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	input := service.UpdatePostInput{
		UserID:            userID,
		PostID:            postID,
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		AdditionalContent: req.AdditionalContent,
		GraphContent:      req.GraphContent,
	}

	image, imgErr := readImageFormFile(c, userID)
	if imgErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	input.Image = image

	post, err := s.postService.UpdatePost(ctx, input)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id (owner or admin)
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.postService.DeletePost(ctx, service.DeletePostInput{
		UserID: userID,
		PostID: postID,
	}); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// readImageFormFile extracts the optional "image" multipart file. A request
// without a multipart body (e.g. JSON) yields (nil, nil).
func readImageFormFile(c *fiber.Ctx, userID uint) (*service.UploadImageInput, error) {
	file, err := c.FormFile("image")
	if err != nil || file == nil {
		return nil, nil
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	return &service.UploadImageInput{
		UserID:      userID,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
