package domain

import (
	"context"
	"time"
)

// PostService defines the feed REST surface consumed by the feed container.
type PostService interface {
	// ListPosts retrieves one page of the feed. An empty cursor starts from
	// the head.
	ListPosts(ctx context.Context, cursor string, limit int) (*Page[Post], error)

	// SearchPosts retrieves one page of posts matching query.
	SearchPosts(ctx context.Context, query, cursor string, limit int) (*Page[Post], error)

	// GetPost fetches a single post by id.
	GetPost(ctx context.Context, id string) (*Post, error)

	// CreatePost creates a post; the server assigns the id.
	CreatePost(ctx context.Context, draft PostDraft) (*Post, error)

	// UpdatePost replaces the mutable fields of a post owned by the viewer
	// and returns the updated post.
	UpdatePost(ctx context.Context, id string, draft PostDraft) (*Post, error)

	// DeletePost removes a post owned by the viewer.
	DeletePost(ctx context.Context, id string) error

	// ToggleLike flips the viewer's like on a post and returns the server's
	// authoritative flag and counter.
	ToggleLike(ctx context.Context, id string) (*ToggleState, error)

	// ToggleSave flips the viewer's save on a post.
	ToggleSave(ctx context.Context, id string) (*ToggleState, error)

	// CreateComment adds a comment and returns it with its server id.
	CreateComment(ctx context.Context, postID, content string) (*Comment, error)

	// MarkViewed records a view. Telemetry only; failures are swallowed by
	// the caller.
	MarkViewed(ctx context.Context, id string) error
}

// MarketplaceService defines the marketplace REST surface.
type MarketplaceService interface {
	ListItems(ctx context.Context, filter MarketplaceFilter, cursor string, limit int) (*Page[MarketplaceItem], error)
	SearchItems(ctx context.Context, query, cursor string, limit int) (*Page[MarketplaceItem], error)
	GetItem(ctx context.Context, id string) (*MarketplaceItem, error)
	CreateItem(ctx context.Context, draft MarketplaceDraft) (*MarketplaceItem, error)
	UpdateItem(ctx context.Context, id string, draft MarketplaceDraft) (*MarketplaceItem, error)
	DeleteItem(ctx context.Context, id string) error
	ToggleSave(ctx context.Context, id string) (*ToggleState, error)
	MarkViewed(ctx context.Context, id string) error
}

// EventService defines the campus-events REST surface.
type EventService interface {
	ListEvents(ctx context.Context, filter EventFilter, cursor string, limit int) (*Page[Event], error)
	SearchEvents(ctx context.Context, query, cursor string, limit int) (*Page[Event], error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, draft EventDraft) (*Event, error)
	UpdateEvent(ctx context.Context, id string, draft EventDraft) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ToggleRegistration(ctx context.Context, id string) (*ToggleState, error)
}

// MessagingService defines the direct-messaging REST surface.
type MessagingService interface {
	ListConversations(ctx context.Context, cursor string, limit int) (*Page[Conversation], error)
	ListMessages(ctx context.Context, conversationID, cursor string, limit int) (*Page[Message], error)

	// SendMessage delivers content to receiverID and returns the confirmed
	// message with its permanent id.
	SendMessage(ctx context.Context, conversationID, receiverID, content string) (*Message, error)

	// MarkConversationRead resets the viewer's unread counter server-side.
	MarkConversationRead(ctx context.Context, conversationID string) error
}

// AuthService defines the authentication REST surface.
type AuthService interface {
	Register(ctx context.Context, name, email, password, university string) (*User, *Tokens, error)
	Login(ctx context.Context, email, password string) (*User, *Tokens, error)

	// Refresh exchanges a refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)

	Logout(ctx context.Context) error
}

// TokenStore persists session tokens across client restarts.
type TokenStore interface {
	SaveTokens(ctx context.Context, tokens Tokens) error

	// LoadTokens returns the stored tokens, or a zero value if none are
	// stored.
	LoadTokens(ctx context.Context) (Tokens, error)

	ClearTokens(ctx context.Context) error
}

// SearchCache persists university-directory results keyed by normalized
// query, with a freshness window enforced by the reader.
type SearchCache interface {
	// GetSearch returns the cached payload for key and when it was fetched.
	// A miss returns ok=false, not an error.
	GetSearch(ctx context.Context, key string) (payload []byte, fetchedAt time.Time, ok bool, err error)

	PutSearch(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error

	// EvictExpiredSearches removes entries fetched before the cutoff and
	// returns the number of rows deleted.
	EvictExpiredSearches(ctx context.Context, cutoff time.Time) (int64, error)
}
