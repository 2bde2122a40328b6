package feedclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"waverider/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryOnServerError(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(models.Post{ID: 1, Title: "back up"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(3, time.Millisecond))
	post, err := c.FetchPost(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "back up", post.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryExhausted(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(2, time.Millisecond))
	_, err := c.FetchPost(t.Context(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestNoRetryOnClientError(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Post not found",
			"code":  "NOT_FOUND",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(5, time.Millisecond))
	_, err := c.FetchPost(t.Context(), 42)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Post not found", apiErr.Message)
}

func TestRetryOnNetworkError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Post{ID: 7})
	}))
	// Closing before the first call forces connection errors on every attempt.
	srv.Close()

	c := New(srv.URL, WithRetry(1, time.Millisecond))
	_, err := c.FetchPost(t.Context(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestAuthHeaderSent(t *testing.T) {
	t.Parallel()
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.Post{ID: 1})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("abc123"))
	_, err := c.FetchPost(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestFetchPostsPopulatesCache(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Gear", r.URL.Query().Get("category"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(PostsPage{
			Posts: []models.Post{
				{ID: 1, Title: "first"},
				{ID: 2, Title: "second"},
			},
			NextCursor: "opaque",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	page, err := c.FetchPosts(t.Context(), "Gear", 2, "")
	require.NoError(t, err)
	assert.Equal(t, "opaque", page.NextCursor)

	cached, ok := c.Cache().Post(2)
	require.True(t, ok)
	assert.Equal(t, "second", cached.Title)
}
