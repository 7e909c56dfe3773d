package state

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	"github.com/KaushikNagaraj77/oruma-go/internal/realtime"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBus is a synchronous in-process stand-in for the realtime channel.
// push delivers a server-originated event to subscribed handlers; Emit
// records client-originated events for assertions.
type fakeBus struct {
	mu       sync.Mutex
	handlers map[realtime.EventType][]realtime.Handler
	emitted  []realtime.Event
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[realtime.EventType][]realtime.Handler)}
}

func (b *fakeBus) On(t realtime.EventType, fn realtime.Handler) realtime.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], fn)
	return realtime.Subscription{}
}

func (b *fakeBus) Off(realtime.Subscription) {}

func (b *fakeBus) Emit(event realtime.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emitted = append(b.emitted, event)
}

func (b *fakeBus) push(event realtime.Event) {
	b.mu.Lock()
	handlers := append([]realtime.Handler(nil), b.handlers[event.Type()]...)
	b.mu.Unlock()
	for _, fn := range handlers {
		fn(event)
	}
}

func (b *fakeBus) emittedEvents() []realtime.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]realtime.Event(nil), b.emitted...)
}

// fakePosts implements domain.PostService with per-method hooks and call
// counting.
type fakePosts struct {
	mu        sync.Mutex
	listCalls int
	listFn    func(cursor string, limit int) (*domain.Page[domain.Post], error)
	searchFn  func(ctx context.Context, query, cursor string, limit int) (*domain.Page[domain.Post], error)
	toggleFn  func(id string) (*domain.ToggleState, error)
	getFn     func(id string) (*domain.Post, error)
	createFn  func(draft domain.PostDraft) (*domain.Post, error)
	updateFn  func(id string, draft domain.PostDraft) (*domain.Post, error)
	deleteFn  func(id string) error
	commentFn func(postID, content string) (*domain.Comment, error)
	viewedFn  func(id string) error
}

func (f *fakePosts) ListPosts(ctx context.Context, cursor string, limit int) (*domain.Page[domain.Post], error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	return f.listFn(cursor, limit)
}

func (f *fakePosts) SearchPosts(ctx context.Context, query, cursor string, limit int) (*domain.Page[domain.Post], error) {
	return f.searchFn(ctx, query, cursor, limit)
}

func (f *fakePosts) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	return f.getFn(id)
}

func (f *fakePosts) CreatePost(ctx context.Context, draft domain.PostDraft) (*domain.Post, error) {
	return f.createFn(draft)
}

func (f *fakePosts) UpdatePost(ctx context.Context, id string, draft domain.PostDraft) (*domain.Post, error) {
	return f.updateFn(id, draft)
}

func (f *fakePosts) DeletePost(ctx context.Context, id string) error {
	return f.deleteFn(id)
}

func (f *fakePosts) ToggleLike(ctx context.Context, id string) (*domain.ToggleState, error) {
	return f.toggleFn(id)
}

func (f *fakePosts) ToggleSave(ctx context.Context, id string) (*domain.ToggleState, error) {
	return f.toggleFn(id)
}

func (f *fakePosts) CreateComment(ctx context.Context, postID, content string) (*domain.Comment, error) {
	return f.commentFn(postID, content)
}

func (f *fakePosts) MarkViewed(ctx context.Context, id string) error {
	if f.viewedFn != nil {
		return f.viewedFn(id)
	}
	return nil
}

func (f *fakePosts) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// fakeMessagingSvc implements domain.MessagingService.
type fakeMessagingSvc struct {
	mu        sync.Mutex
	sendCalls int
	convsFn   func(cursor string, limit int) (*domain.Page[domain.Conversation], error)
	msgsFn    func(conversationID, cursor string, limit int) (*domain.Page[domain.Message], error)
	sendFn    func(call int, conversationID, receiverID, content string) (*domain.Message, error)
	readFn    func(conversationID string) error
}

func (f *fakeMessagingSvc) ListConversations(ctx context.Context, cursor string, limit int) (*domain.Page[domain.Conversation], error) {
	return f.convsFn(cursor, limit)
}

func (f *fakeMessagingSvc) ListMessages(ctx context.Context, conversationID, cursor string, limit int) (*domain.Page[domain.Message], error) {
	return f.msgsFn(conversationID, cursor, limit)
}

func (f *fakeMessagingSvc) SendMessage(ctx context.Context, conversationID, receiverID, content string) (*domain.Message, error) {
	f.mu.Lock()
	f.sendCalls++
	call := f.sendCalls
	f.mu.Unlock()
	return f.sendFn(call, conversationID, receiverID, content)
}

func (f *fakeMessagingSvc) MarkConversationRead(ctx context.Context, conversationID string) error {
	if f.readFn != nil {
		return f.readFn(conversationID)
	}
	return nil
}

func postPage(hasMore bool, cursor string, posts ...domain.Post) *domain.Page[domain.Post] {
	return &domain.Page[domain.Post]{Items: posts, HasMore: hasMore, NextCursor: cursor}
}

func post(id string, likes int, liked bool) domain.Post {
	return domain.Post{ID: id, AuthorID: "author-" + id, Content: "post " + id, LikesCount: likes, Liked: liked}
}
