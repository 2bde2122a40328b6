package server

import (
	"fmt"
	"net/http"
	"testing"

	"waverider/internal/models"
	"waverider/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	t.Parallel()
	s, app := newTestServer(t)
	user := createServerTestUser(t, s, "author@example.com", "wavewriter", models.RoleAuthenticated)
	token := authToken(t, s, user)

	t.Run("creates post with author snapshot", func(t *testing.T) {
		var body struct {
			Post models.Post `json:"post"`
		}
		resp := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
			"title":       "Morning swell",
			"description": "Long-period groundswell incoming",
			"category":    "Surf Reports",
		}, &body)

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "Morning swell", body.Post.Title)
		assert.Equal(t, "wavewriter", body.Post.AuthorUsername)
		assert.Equal(t, user.ID, body.Post.UserID)
	})

	t.Run("missing fields rejected without write", func(t *testing.T) {
		var before int64
		s.db.Model(&models.Post{}).Count(&before)

		var body models.ErrorResponse
		resp := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
			"title": "No description",
		}, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeValidation, body.Code)

		var after int64
		s.db.Model(&models.Post{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("script tags stripped from rich content", func(t *testing.T) {
		var body struct {
			Post models.Post `json:"post"`
		}
		resp := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
			"title":              "Marked up",
			"description":        "sanitized",
			"category":           "Surf Reports",
			"additional_content": `<p>fine</p><script>alert("x")</script>`,
		}, &body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Contains(t, body.Post.AdditionalContent, "<p>fine</p>")
		assert.NotContains(t, body.Post.AdditionalContent, "script")
	})

	t.Run("requires authentication", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/posts", "", map[string]string{
			"title":       "anon",
			"description": "anon",
			"category":    "Surf Reports",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGetPostsCursorPagination(t *testing.T) {
	t.Parallel()
	s, app := newTestServer(t)
	user := createServerTestUser(t, s, "pager@example.com", "pager", models.RoleAuthenticated)
	token := authToken(t, s, user)

	for i := 1; i <= 5; i++ {
		resp := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
			"title":       fmt.Sprintf("Post %d", i),
			"description": "paging",
			"category":    "Surf Reports",
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	seen := make(map[uint]bool)
	cursor := ""
	pages := 0
	for {
		path := "/api/posts?limit=2"
		if cursor != "" {
			path += "&startAfter=" + cursor
		}
		var page service.PostsPage
		resp := doJSON(t, app, http.MethodGet, path, "", nil, &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		pages++

		for _, p := range page.Posts {
			assert.False(t, seen[p.ID], "post %d returned twice", p.ID)
			seen[p.ID] = true
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
		require.LessOrEqual(t, pages, 5, "cursor never terminated")
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 5)
}

func TestGetPostsCategoryFilter(t *testing.T) {
	t.Parallel()
	s, app := newTestServer(t)
	user := createServerTestUser(t, s, "cat@example.com", "cat", models.RoleAuthenticated)
	token := authToken(t, s, user)

	for _, category := range []string{"Surf Reports", "Gear", "Surf Reports"} {
		resp := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
			"title":       "in " + category,
			"description": "d",
			"category":    category,
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var page service.PostsPage
	resp := doJSON(t, app, http.MethodGet, "/api/posts?category=Gear", "", nil, &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "Gear", page.Posts[0].Category)

	// The "All" sentinel disables the filter
	resp = doJSON(t, app, http.MethodGet, "/api/posts?category=All", "", nil, &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, page.Posts, 3)
}

func TestGetPostsBadCursor(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)

	var body models.ErrorResponse
	resp := doJSON(t, app, http.MethodGet, "/api/posts?startAfter=%21%21not-base64%21%21", "", nil, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, body.Code)
}

func TestUpdateAndDeletePostAuthorization(t *testing.T) {
	t.Parallel()
	s, app := newTestServer(t)
	owner := createServerTestUser(t, s, "owner@example.com", "owner", models.RoleAuthenticated)
	stranger := createServerTestUser(t, s, "stranger@example.com", "stranger", models.RoleAuthenticated)
	admin := createServerTestUser(t, s, "boss@example.com", "boss", models.RoleAdmin)

	var created struct {
		Post models.Post `json:"post"`
	}
	resp := doJSON(t, app, http.MethodPost, "/api/posts", authToken(t, s, owner), map[string]string{
		"title":       "Mine",
		"description": "d",
		"category":    "Surf Reports",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := created.Post
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	t.Run("stranger cannot update", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, path, authToken(t, s, stranger), map[string]string{
			"title": "Hijacked",
		}, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner updates", func(t *testing.T) {
		var updated models.Post
		resp := doJSON(t, app, http.MethodPut, path, authToken(t, s, owner), map[string]string{
			"title": "Mine, renamed",
		}, &updated)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Mine, renamed", updated.Title)
	})

	t.Run("forbidden delete leaves post retrievable", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, path, authToken(t, s, stranger), nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var fetched models.Post
		resp = doJSON(t, app, http.MethodGet, path, "", nil, &fetched)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, post.ID, fetched.ID)
	})

	t.Run("admin deletes", func(t *testing.T) {
		var body struct {
			Success bool `json:"success"`
		}
		resp := doJSON(t, app, http.MethodDelete, path, authToken(t, s, admin), nil, &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, body.Success)

		resp = doJSON(t, app, http.MethodGet, path, "", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetUserPosts(t *testing.T) {
	t.Parallel()
	s, app := newTestServer(t)
	alice := createServerTestUser(t, s, "alice@example.com", "alice", models.RoleAuthenticated)
	bob := createServerTestUser(t, s, "bob@example.com", "bob", models.RoleAuthenticated)

	for i := 0; i < 2; i++ {
		resp := doJSON(t, app, http.MethodPost, "/api/posts", authToken(t, s, alice), map[string]string{
			"title":       fmt.Sprintf("alice %d", i),
			"description": "d",
			"category":    "Surf Reports",
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var posts []models.Post
	path := fmt.Sprintf("/api/users/%d/posts", alice.ID)
	resp := doJSON(t, app, http.MethodGet, path, authToken(t, s, bob), nil, &posts)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, alice.ID, p.UserID)
	}
}

func TestSearchPosts(t *testing.T) {
	t.Parallel()
	s, app := newTestServer(t)
	user := createServerTestUser(t, s, "search@example.com", "search", models.RoleAuthenticated)
	token := authToken(t, s, user)

	resp := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
		"title":       "Reef pass conditions",
		"description": "d",
		"category":    "Surf Reports",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var posts []models.Post
	resp = doJSON(t, app, http.MethodGet, "/api/posts/search?q=reef", "", nil, &posts)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, posts, 1)
	assert.Equal(t, "Reef pass conditions", posts[0].Title)

	resp = doJSON(t, app, http.MethodGet, "/api/posts/search", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
