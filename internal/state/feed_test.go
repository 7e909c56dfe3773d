package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaushikNagaraj77/oruma-go/internal/apperrors"
	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	"github.com/KaushikNagaraj77/oruma-go/internal/realtime"
)

func newTestFeed(t *testing.T, svc *fakePosts, bus *fakeBus) *Feed {
	t.Helper()
	f := NewFeed(svc, bus, "viewer-1", 2, 0, testLogger())
	t.Cleanup(f.Close)
	return f
}

func TestFeedLoadPagination(t *testing.T) {
	svc := &fakePosts{
		listFn: func(cursor string, limit int) (*domain.Page[domain.Post], error) {
			switch cursor {
			case "":
				return postPage(true, "c1", post("p1", 3, false), post("p2", 0, false)), nil
			case "c1":
				return postPage(false, "", post("p2", 0, false), post("p3", 1, true)), nil
			default:
				t.Fatalf("unexpected cursor %q", cursor)
				return nil, nil
			}
		},
	}
	feed := newTestFeed(t, svc, newFakeBus())
	ctx := context.Background()

	require.NoError(t, feed.Load(ctx, true))
	assert.Len(t, feed.Posts(), 2, "expected first page")
	assert.True(t, feed.HasMore(), "expected more pages after first")

	require.NoError(t, feed.Load(ctx, false))
	posts := feed.Posts()
	require.Len(t, posts, 3, "expected overlapping id p2 to be deduplicated")
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{posts[0].ID, posts[1].ID, posts[2].ID},
		"expected appended page to preserve order")
	assert.False(t, feed.HasMore(), "expected pagination exhausted")

	// Exhausted pagination makes further non-reset loads a no-op with no
	// request issued.
	require.NoError(t, feed.Load(ctx, false))
	assert.Equal(t, 2, svc.listCount(), "expected no request after hasMore=false")

	// A reset always refetches from the head.
	require.NoError(t, feed.Load(ctx, true))
	assert.Equal(t, 3, svc.listCount(), "expected reset to issue a request")
	assert.Len(t, feed.Posts(), 2, "expected reset to replace the collection")
}

func TestFeedToggleLike(t *testing.T) {
	t.Run("commit overwrites with server values", func(t *testing.T) {
		svc := &fakePosts{
			listFn: func(string, int) (*domain.Page[domain.Post], error) {
				return postPage(false, "", post("p1", 3, false)), nil
			},
			toggleFn: func(id string) (*domain.ToggleState, error) {
				// Server settled on a different count than the local guess.
				return &domain.ToggleState{Active: true, Count: 10}, nil
			},
		}
		feed := newTestFeed(t, svc, newFakeBus())
		require.NoError(t, feed.Load(context.Background(), true))

		require.NoError(t, feed.ToggleLike(context.Background(), "p1"))
		got := feed.Posts()[0]
		assert.True(t, got.Liked, "expected server flag")
		assert.Equal(t, 10, got.LikesCount, "expected server count, not the local +1 guess")
	})

	t.Run("failure rolls back to the exact snapshot", func(t *testing.T) {
		svc := &fakePosts{
			listFn: func(string, int) (*domain.Page[domain.Post], error) {
				return postPage(false, "", post("p1", 3, true)), nil
			},
			toggleFn: func(id string) (*domain.ToggleState, error) {
				return nil, apperrors.Internal("toggle unavailable", nil)
			},
		}
		feed := newTestFeed(t, svc, newFakeBus())
		require.NoError(t, feed.Load(context.Background(), true))

		err := feed.ToggleLike(context.Background(), "p1")
		require.Error(t, err)
		got := feed.Posts()[0]
		assert.True(t, got.Liked, "expected flag restored")
		assert.Equal(t, 3, got.LikesCount, "expected count restored")
		assert.Equal(t, "toggle unavailable", feed.Err(), "expected user-visible message recorded")
	})

	t.Run("absent post is a no-op", func(t *testing.T) {
		svc := &fakePosts{
			listFn: func(string, int) (*domain.Page[domain.Post], error) {
				return postPage(false, ""), nil
			},
			toggleFn: func(id string) (*domain.ToggleState, error) {
				t.Fatal("no request expected for an absent post")
				return nil, nil
			},
		}
		feed := newTestFeed(t, svc, newFakeBus())
		require.NoError(t, feed.Load(context.Background(), true))
		assert.NoError(t, feed.ToggleLike(context.Background(), "missing"))
	})
}

func TestFeedRealtimeMerge(t *testing.T) {
	svc := &fakePosts{
		listFn: func(string, int) (*domain.Page[domain.Post], error) {
			return postPage(false, "", post("p1", 3, false), post("p2", 0, false)), nil
		},
	}
	bus := newFakeBus()
	feed := newTestFeed(t, svc, bus)
	require.NoError(t, feed.Load(context.Background(), true))

	t.Run("counter is set, never incremented", func(t *testing.T) {
		event := realtime.PostLiked{PostID: "p1", UserID: "someone-else", LikesCount: 7, Liked: true}
		bus.push(event)
		bus.push(event) // replay
		got := feed.Posts()[0]
		assert.Equal(t, 7, got.LikesCount, "expected replayed event to be idempotent")
		assert.False(t, got.Liked, "expected flag untouched for another user's like")
	})

	t.Run("flag follows the viewer's own cross-device action", func(t *testing.T) {
		bus.push(realtime.PostLiked{PostID: "p2", UserID: "viewer-1", LikesCount: 1, Liked: true})
		got := feed.Posts()[1]
		assert.True(t, got.Liked)
		assert.Equal(t, 1, got.LikesCount)
	})

	t.Run("event for an absent id is dropped", func(t *testing.T) {
		bus.push(realtime.PostLiked{PostID: "paged-out", UserID: "x", LikesCount: 99, Liked: true})
		for _, p := range feed.Posts() {
			assert.NotEqual(t, "paged-out", p.ID)
		}
	})

	t.Run("commented event sets the server count", func(t *testing.T) {
		bus.push(realtime.PostCommented{PostID: "p1", UserID: "x", CommentsCount: 4})
		assert.Equal(t, 4, feed.Posts()[0].CommentsCount)
	})

	t.Run("new post lands at the head once", func(t *testing.T) {
		event := realtime.NewPost{Post: post("p0", 0, false)}
		bus.push(event)
		bus.push(event)
		posts := feed.Posts()
		require.Equal(t, "p0", posts[0].ID, "expected broadcast post prepended")
		count := 0
		for _, p := range posts {
			if p.ID == "p0" {
				count++
			}
		}
		assert.Equal(t, 1, count, "expected duplicate broadcast dropped")
	})
}

func TestFeedSearchSupersedes(t *testing.T) {
	started := make(chan struct{})
	svc := &fakePosts{
		searchFn: func(ctx context.Context, query, cursor string, limit int) (*domain.Page[domain.Post], error) {
			if query == "slow" {
				close(started)
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return postPage(false, "", post("fast-1", 0, false)), nil
		},
	}
	feed := newTestFeed(t, svc, newFakeBus())

	done := make(chan error, 1)
	go func() {
		done <- feed.Search(context.Background(), "slow")
	}()
	<-started

	// The newer query cancels the older one; the older response is discarded
	// without surfacing an error.
	require.NoError(t, feed.Search(context.Background(), "fast"))
	require.NoError(t, <-done, "expected superseded search to be silent")

	posts := feed.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "fast-1", posts[0].ID, "expected only the latest query's results")
	assert.Equal(t, "", feed.Err())
}

func TestFeedSearchDebounced(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	svc := &fakePosts{
		searchFn: func(ctx context.Context, query, cursor string, limit int) (*domain.Page[domain.Post], error) {
			mu.Lock()
			queries = append(queries, query)
			mu.Unlock()
			return postPage(false, "", post(query+"-1", 0, false)), nil
		},
	}
	feed := NewFeed(svc, newFakeBus(), "viewer-1", 2, 20*time.Millisecond, testLogger())
	defer feed.Close()

	// A burst of keystrokes collapses into one request for the last query.
	feed.SearchDebounced(context.Background(), "g")
	feed.SearchDebounced(context.Background(), "go")
	feed.SearchDebounced(context.Background(), "gop")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(queries) > 0
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"gop"}, queries, "expected only the final query issued")
	mu.Unlock()
	assert.Equal(t, "gop-1", feed.Posts()[0].ID)
}

func TestFeedGet(t *testing.T) {
	svc := &fakePosts{
		listFn: func(string, int) (*domain.Page[domain.Post], error) {
			return postPage(false, "", post("p1", 3, false)), nil
		},
		getFn: func(id string) (*domain.Post, error) {
			if id != "p-remote" {
				t.Fatalf("unexpected fetch for %s", id)
			}
			p := post("p-remote", 8, false)
			return &p, nil
		},
	}
	feed := newTestFeed(t, svc, newFakeBus())
	require.NoError(t, feed.Load(context.Background(), true))

	local, err := feed.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, local.LikesCount, "expected the locally held copy")

	remote, err := feed.Get(context.Background(), "p-remote")
	require.NoError(t, err)
	assert.Equal(t, 8, remote.LikesCount)
	require.Len(t, feed.Posts(), 1, "fetched post must not join the collection")
}

func TestFeedUpdate(t *testing.T) {
	svc := &fakePosts{
		listFn: func(string, int) (*domain.Page[domain.Post], error) {
			return postPage(false, "", post("p1", 0, false), post("p2", 0, false)), nil
		},
		updateFn: func(id string, draft domain.PostDraft) (*domain.Post, error) {
			if id == "p2" {
				return nil, apperrors.Unauthorized("not the author", nil)
			}
			p := post(id, 0, false)
			p.Content = draft.Content
			return &p, nil
		},
	}
	feed := newTestFeed(t, svc, newFakeBus())
	require.NoError(t, feed.Load(context.Background(), true))

	updated, err := feed.Update(context.Background(), "p1", domain.PostDraft{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, "edited", feed.Posts()[0].Content, "confirmed edit replaces in place")

	_, err = feed.Update(context.Background(), "p2", domain.PostDraft{Content: "nope"})
	require.Error(t, err)
	assert.Equal(t, "post p2", feed.Posts()[1].Content, "failed edit must leave the post untouched")
}

func TestFeedCreateAndRemove(t *testing.T) {
	svc := &fakePosts{
		listFn: func(string, int) (*domain.Page[domain.Post], error) {
			return postPage(false, "", post("p1", 0, false)), nil
		},
		createFn: func(draft domain.PostDraft) (*domain.Post, error) {
			p := post("server-id", 0, false)
			p.Content = draft.Content
			return &p, nil
		},
		deleteFn: func(id string) error { return nil },
	}
	feed := newTestFeed(t, svc, newFakeBus())
	require.NoError(t, feed.Load(context.Background(), true))

	created, err := feed.Create(context.Background(), domain.PostDraft{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "server-id", created.ID, "expected the server-assigned id")
	assert.Equal(t, "server-id", feed.Posts()[0].ID, "expected confirmed post at the head")

	require.NoError(t, feed.Remove(context.Background(), "server-id"))
	require.Len(t, feed.Posts(), 1)
	assert.Equal(t, "p1", feed.Posts()[0].ID)
}

func TestFeedRemoveFailureKeepsPost(t *testing.T) {
	svc := &fakePosts{
		listFn: func(string, int) (*domain.Page[domain.Post], error) {
			return postPage(false, "", post("p1", 0, false)), nil
		},
		deleteFn: func(id string) error {
			return apperrors.Internal("delete failed", nil)
		},
	}
	feed := newTestFeed(t, svc, newFakeBus())
	require.NoError(t, feed.Load(context.Background(), true))

	require.Error(t, feed.Remove(context.Background(), "p1"))
	assert.Len(t, feed.Posts(), 1, "expected post kept when delete is not confirmed")
}

func TestFeedComment(t *testing.T) {
	svc := &fakePosts{
		listFn: func(string, int) (*domain.Page[domain.Post], error) {
			return postPage(false, "", post("p1", 0, false)), nil
		},
		commentFn: func(postID, content string) (*domain.Comment, error) {
			return &domain.Comment{ID: "c1", PostID: postID, Content: content}, nil
		},
	}
	feed := newTestFeed(t, svc, newFakeBus())
	require.NoError(t, feed.Load(context.Background(), true))

	comment, err := feed.Comment(context.Background(), "p1", "nice")
	require.NoError(t, err)
	assert.Equal(t, "c1", comment.ID)
	assert.Equal(t, 1, feed.Posts()[0].CommentsCount, "expected local counter bumped on confirm")
}
