package service

import (
	"context"
	"errors"
	"testing"

	"waverider/internal/models"
	"waverider/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint, uint) (*models.Post, error)
	listByCategoryFn func(context.Context, string, int, *repository.Cursor) ([]*models.Post, error)
	listByUserFn     func(context.Context, uint, int, int) ([]*models.Post, error)
	listByIDsFn      func(context.Context, []uint) ([]*models.Post, error)
	searchFn         func(context.Context, string, int, int) ([]*models.Post, error)
	updateFn         func(context.Context, *models.Post) error
	deleteFn         func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) ListByCategory(ctx context.Context, category string, limit int, after *repository.Cursor) ([]*models.Post, error) {
	return s.listByCategoryFn(ctx, category, limit, after)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) ListByIDs(ctx context.Context, ids []uint) ([]*models.Post, error) {
	return s.listByIDsFn(ctx, ids)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listByCategoryFn: func(_ context.Context, _ string, _ int, _ *repository.Cursor) ([]*models.Post, error) {
			return nil, nil
		},
		listByUserFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		listByIDsFn:  func(_ context.Context, _ []uint) ([]*models.Post, error) { return nil, nil },
		searchFn:     func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn            func(context.Context, *models.Comment) error
	getByIDFn           func(context.Context, uint) (*models.Comment, error)
	listByPostFn        func(context.Context, uint) ([]*models.Comment, error)
	existsOnPostFn      func(context.Context, uint, uint) (bool, error)
	updateFn            func(context.Context, *models.Comment) error
	deleteManyFn        func(context.Context, uint, []uint) error
	countByPostFn       func(context.Context, uint) (int64, error)
	likeFn              func(context.Context, uint, uint) error
	unlikeFn            func(context.Context, uint, uint) error
	likerIDsFn          func(context.Context, uint) ([]uint, error)
	likerIDsByCommentFn func(context.Context, []uint) (map[uint][]uint, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) ExistsOnPost(ctx context.Context, commentID, postID uint) (bool, error) {
	return s.existsOnPostFn(ctx, commentID, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) DeleteMany(ctx context.Context, postID uint, ids []uint) error {
	return s.deleteManyFn(ctx, postID, ids)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) Like(ctx context.Context, userID, commentID uint) error {
	return s.likeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) Unlike(ctx context.Context, userID, commentID uint) error {
	return s.unlikeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) LikerIDs(ctx context.Context, commentID uint) ([]uint, error) {
	return s.likerIDsFn(ctx, commentID)
}
func (s *commentRepoStub) LikerIDsByComment(ctx context.Context, ids []uint) (map[uint][]uint, error) {
	return s.likerIDsByCommentFn(ctx, ids)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn:   func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		existsOnPostFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		updateFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		deleteManyFn:   func(_ context.Context, _ uint, _ []uint) error { return nil },
		countByPostFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		likeFn:         func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:       func(_ context.Context, _, _ uint) error { return nil },
		likerIDsFn:     func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		likerIDsByCommentFn: func(_ context.Context, _ []uint) (map[uint][]uint, error) {
			return map[uint][]uint{}, nil
		},
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByIDWithPostsFn func(context.Context, uint, int) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	updateFn           func(context.Context, *models.User) error
	deleteFn           func(context.Context, uint) error
	listFn             func(context.Context, int, int) ([]models.User, error)
	addFavoriteFn      func(context.Context, uint, uint) error
	removeFavoriteFn   func(context.Context, uint, uint) error
	listFavoriteIDsFn  func(context.Context, uint) ([]uint, error)
	isFavoriteFn       func(context.Context, uint, uint) (bool, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithPosts(ctx context.Context, id uint, limit int) (*models.User, error) {
	return s.getByIDWithPostsFn(ctx, id, limit)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) AddFavorite(ctx context.Context, userID, postID uint) error {
	return s.addFavoriteFn(ctx, userID, postID)
}
func (s *userRepoStub) RemoveFavorite(ctx context.Context, userID, postID uint) error {
	return s.removeFavoriteFn(ctx, userID, postID)
}
func (s *userRepoStub) ListFavoriteIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.listFavoriteIDsFn(ctx, userID)
}
func (s *userRepoStub) IsFavorite(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isFavoriteFn(ctx, userID, postID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "rider", Role: models.RoleAuthenticated}, nil
		},
		getByIDWithPostsFn: func(_ context.Context, id uint, _ int) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByEmailFn:      func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:          func(_ context.Context, _ *models.User) error { return nil },
		updateFn:          func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:          func(_ context.Context, _ uint) error { return nil },
		listFn:            func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		addFavoriteFn:     func(_ context.Context, _, _ uint) error { return nil },
		removeFavoriteFn:  func(_ context.Context, _, _ uint) error { return nil },
		listFavoriteIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		isFavoriteFn:      func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// imageRepoStub is a stub for repository.ImageRepository.
type imageRepoStub struct {
	createFn              func(context.Context, *models.Image) error
	getByHashFn           func(context.Context, string) (*models.Image, error)
	deleteByHashFn        func(context.Context, string) error
	countPostsUsingHashFn func(context.Context, string) (int64, error)
}

func (s *imageRepoStub) Create(ctx context.Context, image *models.Image) error {
	return s.createFn(ctx, image)
}
func (s *imageRepoStub) GetByHash(ctx context.Context, hash string) (*models.Image, error) {
	return s.getByHashFn(ctx, hash)
}
func (s *imageRepoStub) DeleteByHash(ctx context.Context, hash string) error {
	return s.deleteByHashFn(ctx, hash)
}
func (s *imageRepoStub) CountPostsUsingHash(ctx context.Context, hash string) (int64, error) {
	return s.countPostsUsingHashFn(ctx, hash)
}

func noopImageRepo() *imageRepoStub {
	return &imageRepoStub{
		createFn:              func(_ context.Context, _ *models.Image) error { return nil },
		getByHashFn:           func(_ context.Context, _ string) (*models.Image, error) { return nil, nil },
		deleteByHashFn:        func(_ context.Context, _ string) error { return nil },
		countPostsUsingHashFn: func(_ context.Context, _ string) (int64, error) { return 0, nil },
	}
}

// imageUploaderStub is a stub for ImageUploader.
type imageUploaderStub struct {
	uploadFn  func(context.Context, UploadImageInput) (*models.Image, error)
	releaseFn func(context.Context, string) error
}

func (s *imageUploaderStub) Upload(ctx context.Context, in UploadImageInput) (*models.Image, error) {
	return s.uploadFn(ctx, in)
}
func (s *imageUploaderStub) Release(ctx context.Context, hash string) error {
	return s.releaseFn(ctx, hash)
}

func noopImageUploader() *imageUploaderStub {
	return &imageUploaderStub{
		uploadFn: func(_ context.Context, _ UploadImageInput) (*models.Image, error) {
			return &models.Image{Hash: "deadbeef", URL: "http://blobs.local/i/deadbeef/original.jpg"}, nil
		},
		releaseFn: func(_ context.Context, _ string) error { return nil },
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeForbidden, appErr.Code)
}
