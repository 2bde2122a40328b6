package repository

import (
	"testing"
	"time"

	"waverider/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostListByCategoryCursor(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	user := createTestUser(t, db, "author@example.com")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var all []*models.Post
	for i := 0; i < 5; i++ {
		p := createTestPost(t, db, user.ID, "post", base.Add(time.Duration(i)*time.Minute))
		all = append(all, p)
	}

	// First page: newest two.
	page, err := repo.ListByCategory(testCtx(), models.CategoryAll, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[4].ID, page[0].ID)
	assert.Equal(t, all[3].ID, page[1].ID)

	// Second page resumes exactly after the first, no overlap.
	after := &Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	page, err = repo.ListByCategory(testCtx(), models.CategoryAll, 2, after)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[2].ID, page[0].ID)
	assert.Equal(t, all[1].ID, page[1].ID)

	// Final page is short.
	after = &Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	page, err = repo.ListByCategory(testCtx(), models.CategoryAll, 2, after)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[0].ID, page[0].ID)
}

func TestPostListByCategoryTieBreak(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	user := createTestUser(t, db, "author@example.com")

	// Same creation instant: ordering must fall back to id DESC.
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := createTestPost(t, db, user.ID, "first", at)
	second := createTestPost(t, db, user.ID, "second", at)

	page, err := repo.ListByCategory(testCtx(), models.CategoryAll, 1, nil)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)

	after := &Cursor{CreatedAt: page[0].CreatedAt, ID: page[0].ID}
	page, err = repo.ListByCategory(testCtx(), models.CategoryAll, 1, after)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}

func TestPostListByCategoryFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	user := createTestUser(t, db, "author@example.com")

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tech := createTestPost(t, db, user.ID, "tech post", at)
	other := createTestPost(t, db, user.ID, "life post", at.Add(time.Minute))
	require.NoError(t, db.Model(other).UpdateColumn("category", "Life").Error)

	page, err := repo.ListByCategory(testCtx(), "Tech", 10, nil)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, tech.ID, page[0].ID)

	page, err = repo.ListByCategory(testCtx(), models.CategoryAll, 10, nil)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestPostCountsSubqueries(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	commentRepo := NewCommentRepository(db)
	userRepo := NewUserRepository(db)

	author := createTestUser(t, db, "author@example.com")
	reader := createTestUser(t, db, "reader@example.com")
	post := createTestPost(t, db, author.ID, "counted", time.Now().UTC())

	for i := 0; i < 3; i++ {
		err := commentRepo.Create(testCtx(), &models.Comment{
			Content:        "hi",
			UserID:         reader.ID,
			PostID:         post.ID,
			AuthorUsername: "rider",
		})
		require.NoError(t, err)
	}
	require.NoError(t, userRepo.AddFavorite(testCtx(), reader.ID, post.ID))

	got, err := repo.GetByID(testCtx(), post.ID, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CommentsCount)
	assert.Equal(t, 1, got.FavoritesCount)
}

func TestPostGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)

	_, err := repo.GetByID(testCtx(), 999, 0)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	user := createTestUser(t, db, "author@example.com")
	post := createTestPost(t, db, user.ID, "doomed", time.Now().UTC())

	require.NoError(t, repo.Delete(testCtx(), post.ID))

	_, err := repo.GetByID(testCtx(), post.ID, user.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	err = repo.Delete(testCtx(), post.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	user := createTestUser(t, db, "author@example.com")

	at := time.Now().UTC()
	createTestPost(t, db, user.ID, "Surfing the Gradient", at)
	createTestPost(t, db, user.ID, "Kernel Tricks", at.Add(time.Minute))

	page, err := repo.Search(testCtx(), "gradient", 10, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Surfing the Gradient", page[0].Title)
}
