package service

import (
	"context"
	"strings"

	"waverider/internal/middleware"
	"waverider/internal/models"
	"waverider/internal/repository"
	"waverider/internal/sanitize"
	"waverider/internal/validation"
)

const (
	maxTitleLen       = 300
	maxDescriptionLen = 50000
	maxRichContentLen = 200000
	defaultPageSize   = 20
	maxPageSize       = 100
)

// ImageUploader is the slice of the image pipeline the post service needs.
type ImageUploader interface {
	Upload(ctx context.Context, in UploadImageInput) (*models.Image, error)
	Release(ctx context.Context, hash string) error
}

type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	imageRepo repository.ImageRepository
	images    ImageUploader
	isAdmin   func(ctx context.Context, userID uint) (bool, error)
}

type CreatePostInput struct {
	UserID            uint
	Title             string
	Description       string
	Category          string
	AdditionalContent string
	GraphContent      string
	Image             *UploadImageInput
}

type ListPostsInput struct {
	Category   string
	Limit      int
	StartAfter string
}

// PostsPage is one page of a post feed. NextCursor is empty when the feed
// is exhausted.
type PostsPage struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type UpdatePostInput struct {
	UserID            uint
	PostID            uint
	Title             string
	Description       string
	Category          string
	AdditionalContent *string
	GraphContent      *string
	Image             *UploadImageInput
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	imageRepo repository.ImageRepository,
	images ImageUploader,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		imageRepo: imageRepo,
		images:    images,
		isAdmin:   isAdmin,
	}
}

// CreatePost validates the input before any side effect: an invalid request
// never writes a blob or a row. The image is stored before the post row so
// a published post never points at a missing blob.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validateCorePostFields(in.Title, in.Description, in.Category); err != nil {
		return nil, err
	}
	if len(in.AdditionalContent) > maxRichContentLen || len(in.GraphContent) > maxRichContentLen {
		return nil, models.NewValidationError("Rich content too long")
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	var imageURL, imageHash string
	if in.Image != nil {
		in.Image.UserID = in.UserID
		img, err := s.images.Upload(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		imageURL = img.URL
		imageHash = img.Hash
	}

	post := &models.Post{
		Title:             strings.TrimSpace(in.Title),
		Description:       strings.TrimSpace(in.Description),
		Category:          strings.TrimSpace(in.Category),
		ImageURL:          imageURL,
		ImageHash:         imageHash,
		AdditionalContent: sanitize.RichHTML(in.AdditionalContent),
		GraphContent:      sanitize.RichHTML(in.GraphContent),
		UserID:            in.UserID,
		AuthorUsername:    author.Username,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		if imageHash != "" {
			s.releaseImageIfUnused(ctx, imageHash)
		}
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PostsPage, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	after, err := repository.DecodeCursor(in.StartAfter)
	if err != nil {
		return nil, err
	}

	// Fetch one extra row to learn whether another page exists.
	posts, err := s.postRepo.ListByCategory(ctx, in.Category, limit+1, after)
	if err != nil {
		return nil, err
	}

	page := &PostsPage{Posts: posts}
	if len(posts) > limit {
		page.Posts = posts[:limit]
		last := page.Posts[limit-1]
		page.NextCursor = repository.EncodeCursor(repository.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	if page.Posts == nil {
		page.Posts = []*models.Post{}
	}
	return page, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.postRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.postRepo.Search(ctx, query, limit, offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizePostMutation(ctx, post, in.UserID); err != nil {
		return nil, err
	}

	if in.Title != "" {
		if len(in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != "" {
		if len(in.Description) > maxDescriptionLen {
			return nil, models.NewValidationError("Description too long")
		}
		post.Description = strings.TrimSpace(in.Description)
	}
	if in.Category != "" {
		if err := validation.ValidateCategory(in.Category); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Category = strings.TrimSpace(in.Category)
	}
	if in.AdditionalContent != nil {
		post.AdditionalContent = sanitize.RichHTML(*in.AdditionalContent)
	}
	if in.GraphContent != nil {
		post.GraphContent = sanitize.RichHTML(*in.GraphContent)
	}

	oldHash := post.ImageHash
	if in.Image != nil {
		in.Image.UserID = in.UserID
		img, err := s.images.Upload(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = img.URL
		post.ImageHash = img.Hash
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if in.Image != nil && oldHash != "" && oldHash != post.ImageHash {
		s.releaseImageIfUnused(ctx, oldHash)
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizePostMutation(ctx, post, in.UserID); err != nil {
		return nil, err
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return nil, err
	}
	if post.ImageHash != "" {
		s.releaseImageIfUnused(ctx, post.ImageHash)
	}
	return post, nil
}

// authorizePostMutation is the single policy point for post writes: the
// author or an admin, nobody else.
func (s *PostService) authorizePostMutation(ctx context.Context, post *models.Post, userID uint) error {
	if post.UserID == userID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewForbiddenError("You can only modify your own posts")
}

// releaseImageIfUnused drops the blob pair once no live post references the
// hash. Failures are logged only: the post mutation already succeeded and a
// stranded blob costs pennies, not correctness.
func (s *PostService) releaseImageIfUnused(ctx context.Context, hash string) {
	count, err := s.imageRepo.CountPostsUsingHash(ctx, hash)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "image refcount check failed", "hash", hash, "error", err)
		return
	}
	if count > 0 {
		return
	}
	if err := s.images.Release(ctx, hash); err != nil {
		middleware.Logger.WarnContext(ctx, "image release failed", "hash", hash, "error", err)
	}
}

func validateCorePostFields(title, description, category string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(description) == "" {
		return models.NewValidationError("Description is required")
	}
	if len(description) > maxDescriptionLen {
		return models.NewValidationError("Description too long")
	}
	if strings.TrimSpace(category) == "" {
		return models.NewValidationError("Category is required")
	}
	if err := validation.ValidateCategory(strings.TrimSpace(category)); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}
