package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaushikNagaraj77/oruma-go/internal/api"
	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	"github.com/KaushikNagaraj77/oruma-go/internal/orumatest"
	"github.com/KaushikNagaraj77/oruma-go/internal/realtime"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

// TestFeedFullFlow drives the feed container through the real REST client and
// realtime channel against the fake backend: paginate, toggle with
// server-side counters, then merge a pushed event.
func TestFeedFullFlow(t *testing.T) {
	server := orumatest.New()
	defer server.Close()
	server.SeedPosts([]domain.Post{
		{ID: "p1", Content: "one", LikesCount: 3},
		{ID: "p2", Content: "two"},
		{ID: "p3", Content: "three"},
	})

	client := api.NewClient(server.URL(), api.TokenSourceFunc(func() string { return "tok" }))
	channel := realtime.NewChannel(server.WSURL(), staticToken("tok"), testLogger())
	defer channel.Close()
	require.NoError(t, channel.Connect(context.Background()))

	feed := NewFeed(api.NewPostsService(client), channel, "user-1", 2, 0, testLogger())
	defer feed.Close()
	ctx := context.Background()

	require.NoError(t, feed.Load(ctx, true))
	assert.Len(t, feed.Posts(), 2)
	require.True(t, feed.HasMore())

	require.NoError(t, feed.Load(ctx, false))
	assert.Len(t, feed.Posts(), 3)
	assert.False(t, feed.HasMore())

	// The toggle round-trips through the backend's real counter.
	require.NoError(t, feed.ToggleLike(ctx, "p1"))
	got := feed.Posts()[0]
	assert.True(t, got.Liked)
	assert.Equal(t, 4, got.LikesCount)

	// A pushed realtime event merges into the same collection.
	require.Eventually(t, func() bool { return server.ConnCount() == 1 },
		time.Second, 10*time.Millisecond)
	require.NoError(t, server.Push("post_liked", map[string]any{
		"postId": "p1", "userId": "someone-else", "likesCount": 9,
	}))
	require.Eventually(t, func() bool { return feed.Posts()[0].LikesCount == 9 },
		time.Second, 10*time.Millisecond, "expected pushed count merged")
	assert.True(t, feed.Posts()[0].Liked, "expected another viewer's like to leave the flag alone")
}
