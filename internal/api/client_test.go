package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaushikNagaraj77/oruma-go/internal/apperrors"
	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	"github.com/KaushikNagaraj77/oruma-go/internal/orumatest"
)

func seedThree(server *orumatest.Server) {
	server.SeedPosts([]domain.Post{
		{ID: "p1", Content: "one", LikesCount: 3},
		{ID: "p2", Content: "two"},
		{ID: "p3", Content: "three"},
	})
}

func TestClientAuthHeader(t *testing.T) {
	server := orumatest.New()
	defer server.Close()
	seedThree(server)

	t.Run("bearer token attached when present", func(t *testing.T) {
		client := NewClient(server.URL(), TokenSourceFunc(func() string { return "tok-123" }))
		_, err := NewPostsService(client).ListPosts(context.Background(), "", 10)
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-123", server.LastAuthHeader)
	})

	t.Run("no header without a session", func(t *testing.T) {
		client := NewClient(server.URL(), TokenSourceFunc(func() string { return "" }))
		_, err := NewPostsService(client).ListPosts(context.Background(), "", 10)
		require.NoError(t, err)
		assert.Empty(t, server.LastAuthHeader)
	})
}

func TestListPostsPagination(t *testing.T) {
	server := orumatest.New()
	defer server.Close()
	seedThree(server)

	svc := NewPostsService(NewClient(server.URL(), TokenSourceFunc(func() string { return "tok" })))

	page1, err := svc.ListPosts(context.Background(), "", 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)
	assert.Equal(t, 3, page1.Total)

	page2, err := svc.ListPosts(context.Background(), page1.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, "p3", page2.Items[0].ID)
	assert.False(t, page2.HasMore)
	assert.Empty(t, page2.NextCursor)
}

func TestGetAndUpdatePost(t *testing.T) {
	server := orumatest.New()
	defer server.Close()
	seedThree(server)

	svc := NewPostsService(NewClient(server.URL(), TokenSourceFunc(func() string { return "tok" })))

	got, err := svc.GetPost(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Content)
	assert.Equal(t, 3, got.LikesCount)

	updated, err := svc.UpdatePost(context.Background(), "p2", domain.PostDraft{Content: "rewritten"})
	require.NoError(t, err)
	assert.Equal(t, "rewritten", updated.Content)

	again, err := svc.GetPost(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", again.Content, "edit must persist server-side")

	_, err = svc.GetPost(context.Background(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestToggleLike(t *testing.T) {
	server := orumatest.New()
	defer server.Close()
	seedThree(server)

	svc := NewPostsService(NewClient(server.URL(), TokenSourceFunc(func() string { return "tok" })))

	state, err := svc.ToggleLike(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, 4, state.Count, "expected server to increment from the seeded count")

	state, err = svc.ToggleLike(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.Equal(t, 3, state.Count, "expected unlike to restore the count")
}

func TestErrorMapping(t *testing.T) {
	server := orumatest.New()
	defer server.Close()
	seedThree(server)

	svc := NewPostsService(NewClient(server.URL(), TokenSourceFunc(func() string { return "tok" })))

	t.Run("404 carries the server message", func(t *testing.T) {
		_, err := svc.ToggleLike(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "post not found", appErr.Message)
		assert.Equal(t, 404, appErr.Status)
	})

	t.Run("400 maps to a bad request", func(t *testing.T) {
		_, err := svc.ListPosts(context.Background(), "not-a-cursor", 10)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
	})

	t.Run("409 maps to a conflict", func(t *testing.T) {
		c := NewClient(server.URL(), TokenSourceFunc(func() string { return "" }))
		err := c.errorFromResponse(http.StatusConflict, []byte(`{"message":"already registered"}`))
		assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "already registered", appErr.Message)
		assert.Equal(t, 409, appErr.Status)
	})

	t.Run("500 maps to an internal error", func(t *testing.T) {
		server.FailToggles(true)
		defer server.FailToggles(false)
		_, err := svc.ToggleLike(context.Background(), "p1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeInternal))
	})

	t.Run("connection failure maps to transport", func(t *testing.T) {
		down := orumatest.New()
		url := down.URL()
		down.Close()
		svc := NewPostsService(NewClient(url, TokenSourceFunc(func() string { return "" })))
		_, err := svc.ListPosts(context.Background(), "", 10)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeTransport))
	})
}
