package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	"github.com/KaushikNagaraj77/oruma-go/internal/realtime"
)

// Feed owns the viewer's post collection. REST responses, optimistic local
// mutations and realtime events from other viewers all merge into the same
// collection keyed by post id.
type Feed struct {
	base
	svc      domain.PostService
	bus      realtime.Bus
	viewerID string
	pageSize int

	col    collection[domain.Post]
	query  string
	search searcher
	subs   []realtime.Subscription
}

// NewFeed creates the feed container and subscribes it to post events.
// Close must be called on teardown so handlers don't leak.
func NewFeed(svc domain.PostService, bus realtime.Bus, viewerID string, pageSize int, debounce time.Duration, logger *slog.Logger) *Feed {
	f := &Feed{
		base:     base{logger: logger},
		svc:      svc,
		bus:      bus,
		viewerID: viewerID,
		pageSize: pageSize,
		col:      newCollection[domain.Post](),
		search:   searcher{delay: debounce},
	}

	f.subs = []realtime.Subscription{
		bus.On(realtime.EventPostLiked, f.onPostLiked),
		bus.On(realtime.EventPostUnliked, f.onPostLiked),
		bus.On(realtime.EventPostSaved, f.onPostSaved),
		bus.On(realtime.EventPostUnsaved, f.onPostSaved),
		bus.On(realtime.EventPostCommented, f.onPostCommented),
		bus.On(realtime.EventNewPost, f.onNewPost),
	}
	return f
}

// Load fetches a page. reset replaces the collection; otherwise the page is
// appended. Once the server reports hasMore=false, further non-reset calls
// are a no-op and no request is issued.
func (f *Feed) Load(ctx context.Context, reset bool) error {
	f.mu.Lock()
	if !reset && !f.col.canLoadMore() {
		f.mu.Unlock()
		return nil
	}
	cursor := ""
	if !reset {
		cursor = f.col.cursor
	}
	query := f.query
	f.clearErr()
	f.mu.Unlock()

	var (
		page *domain.Page[domain.Post]
		err  error
	)
	if query != "" {
		page, err = f.svc.SearchPosts(ctx, query, cursor, f.pageSize)
	} else {
		page, err = f.svc.ListPosts(ctx, cursor, f.pageSize)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return f.fail("load feed", err)
	}
	if reset {
		f.col.replace(page)
	} else {
		f.col.appendPage(page)
	}
	return nil
}

// Search replaces the collection with results for query. A newer Search
// cancels this one, so only the latest query's results are applied even if
// an older response arrives later. An empty query degrades to a plain
// reload.
func (f *Feed) Search(ctx context.Context, query string) error {
	f.mu.Lock()
	f.query = query
	f.mu.Unlock()

	if query == "" {
		return f.Load(ctx, true)
	}

	sctx := f.search.begin(ctx)
	page, err := f.svc.SearchPosts(sctx, query, "", f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	if sctx.Err() != nil {
		// superseded by a newer query
		return nil
	}
	if err != nil {
		return f.fail("search posts", err)
	}
	f.col.replace(page)
	return nil
}

// SearchDebounced schedules Search after the debounce delay, collapsing a
// burst of keystrokes into one request.
func (f *Feed) SearchDebounced(ctx context.Context, query string) {
	f.search.debounce(func() {
		if err := f.Search(ctx, query); err != nil {
			f.logger.Debug("debounced search failed", "query", query, "error", err)
		}
	})
}

// ToggleLike flips the viewer's like optimistically, then reconciles with
// the server's authoritative flag and counter, rolling back on failure.
func (f *Feed) ToggleLike(ctx context.Context, id string) error {
	_, err := runToggle(ctx, &f.mu, &f.col, id,
		func(p domain.Post) domain.ToggleState {
			return domain.ToggleState{Active: p.Liked, Count: p.LikesCount}
		},
		func(p *domain.Post, s domain.ToggleState) {
			p.Liked = s.Active
			p.LikesCount = s.Count
		},
		func(ctx context.Context) (*domain.ToggleState, error) {
			return f.svc.ToggleLike(ctx, id)
		},
	)
	if err != nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.fail("toggle like", err)
	}
	return nil
}

// ToggleSave flips the viewer's save, same protocol as ToggleLike.
func (f *Feed) ToggleSave(ctx context.Context, id string) error {
	_, err := runToggle(ctx, &f.mu, &f.col, id,
		func(p domain.Post) domain.ToggleState {
			return domain.ToggleState{Active: p.Saved, Count: 0}
		},
		func(p *domain.Post, s domain.ToggleState) {
			p.Saved = s.Active
		},
		func(ctx context.Context) (*domain.ToggleState, error) {
			return f.svc.ToggleSave(ctx, id)
		},
	)
	if err != nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.fail("toggle save", err)
	}
	return nil
}

// Create waits for the server-assigned id and inserts the confirmed post at
// the head. Nothing is inserted optimistically; a failure leaves the
// collection unchanged.
func (f *Feed) Create(ctx context.Context, draft domain.PostDraft) (*domain.Post, error) {
	post, err := f.svc.CreatePost(ctx, draft)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return nil, f.fail("create post", err)
	}
	f.col.prepend(*post)
	return post, nil
}

// Get returns the post from the local collection when present, falling back
// to the server for posts paged out or never loaded. The fetched post is not
// inserted; only list pages and realtime broadcasts grow the collection.
func (f *Feed) Get(ctx context.Context, id string) (*domain.Post, error) {
	f.mu.Lock()
	if post, ok := f.col.get(id); ok {
		f.mu.Unlock()
		return &post, nil
	}
	f.mu.Unlock()

	post, err := f.svc.GetPost(ctx, id)
	if err != nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		return nil, f.fail("get post", err)
	}
	return post, nil
}

// Update replaces a post's mutable fields. The local copy changes only after
// the server confirms; a failure leaves the collection untouched and the
// error is returned for the caller to react to.
func (f *Feed) Update(ctx context.Context, id string, draft domain.PostDraft) (*domain.Post, error) {
	post, err := f.svc.UpdatePost(ctx, id, draft)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return nil, f.fail("update post", err)
	}
	f.col.swap(id, *post)
	return post, nil
}

// Remove deletes a post, removing it locally only after the server
// confirms, so a failed delete never flashes the post away and back.
func (f *Feed) Remove(ctx context.Context, id string) error {
	err := f.svc.DeletePost(ctx, id)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return f.fail("delete post", err)
	}
	f.col.remove(id)
	return nil
}

// Comment adds a comment and bumps the local counter with the confirmed
// value's arrival; the realtime post_commented event later sets the
// server's authoritative count.
func (f *Feed) Comment(ctx context.Context, postID, content string) (*domain.Comment, error) {
	comment, err := f.svc.CreateComment(ctx, postID, content)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return nil, f.fail("create comment", err)
	}
	f.col.patch(postID, func(p *domain.Post) { p.CommentsCount++ })
	return comment, nil
}

// MarkViewed records a view. Telemetry only: failures are logged and
// swallowed, never surfaced.
func (f *Feed) MarkViewed(ctx context.Context, id string) {
	if err := f.svc.MarkViewed(ctx, id); err != nil {
		f.logger.Debug("mark viewed failed", "post_id", id, "error", err)
	}
}

// Posts returns a snapshot of the collection.
func (f *Feed) Posts() []domain.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.col.snapshot()
}

// HasMore reports whether another page can be requested.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.col.canLoadMore()
}

// Close unsubscribes from the realtime channel and cancels pending
// searches.
func (f *Feed) Close() {
	f.search.stop()
	for _, sub := range f.subs {
		f.bus.Off(sub)
	}
	f.subs = nil
}

// onPostLiked merges a like/unlike by any viewer: the counter is set to the
// event's value, never incremented, so replaying the same event is
// idempotent. The flag only follows events for the viewer's own actions
// from another device.
func (f *Feed) onPostLiked(event realtime.Event) {
	e, ok := event.(realtime.PostLiked)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.col.patch(e.PostID, func(p *domain.Post) {
		p.LikesCount = e.LikesCount
		if e.UserID == f.viewerID {
			p.Liked = e.Liked
		}
	})
}

func (f *Feed) onPostSaved(event realtime.Event) {
	e, ok := event.(realtime.PostSaved)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.col.patch(e.PostID, func(p *domain.Post) {
		if e.UserID == f.viewerID {
			p.Saved = e.Saved
		}
	})
}

func (f *Feed) onPostCommented(event realtime.Event) {
	e, ok := event.(realtime.PostCommented)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.col.patch(e.PostID, func(p *domain.Post) {
		p.CommentsCount = e.CommentsCount
	})
}

func (f *Feed) onNewPost(event realtime.Event) {
	e, ok := event.(realtime.NewPost)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.col.prepend(e.Post)
}
