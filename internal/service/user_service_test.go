package service

import (
	"context"
	"strings"
	"testing"

	"waverider/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("sanitizes and trims fields", func(t *testing.T) {
		t.Parallel()
		var saved *models.User
		userRepo := noopUserRepo()
		userRepo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(userRepo, noopPostRepo())

		bio := `hello <script>alert(1)</script>world`
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Bio: &bio, Interests: []string{" surfing ", "", "ml"}})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.NotContains(t, saved.Bio, "script")
		assert.Equal(t, []string{"surfing", "ml"}, saved.Interests)
	})

	t.Run("rejects bad username", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopPostRepo())
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Username: "-bad"})
		assertValidationError(t, err)
	})

	t.Run("rejects oversized bio", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopPostRepo())
		long := strings.Repeat("x", 501)
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Bio: &long})
		assertValidationError(t, err)
	})
}

func TestUserService_SetRole(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var saved *models.User
	userRepo := noopUserRepo()
	userRepo.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}
	svc := NewUserService(userRepo, noopPostRepo())

	_, err := svc.SetRole(ctx, 2, models.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, models.RoleAdmin, saved.Role)

	_, err = svc.SetRole(ctx, 2, "superuser")
	assertValidationError(t, err)
}

func TestUserService_Favorites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("add checks post exists", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc := NewUserService(noopUserRepo(), postRepo)
		err := svc.AddFavorite(ctx, 1, 99)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})

	t.Run("list resolves ids to posts", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.listFavoriteIDsFn = func(_ context.Context, _ uint) ([]uint, error) {
			return []uint{3, 5}, nil
		}
		postRepo := noopPostRepo()
		postRepo.listByIDsFn = func(_ context.Context, ids []uint) ([]*models.Post, error) {
			assert.Equal(t, []uint{3, 5}, ids)
			return []*models.Post{{ID: 5}, {ID: 3}}, nil
		}
		svc := NewUserService(userRepo, postRepo)
		posts, err := svc.ListFavorites(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("empty favorites yields empty slice", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopPostRepo())
		posts, err := svc.ListFavorites(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})
}
