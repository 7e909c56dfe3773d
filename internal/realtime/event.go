package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// EventType identifies one event in the closed realtime taxonomy.
type EventType string

const (
	EventMessageDelivered EventType = "message_delivered"
	EventMessageRead      EventType = "message_read"
	EventTypingStart      EventType = "typing_start"
	EventTypingStop       EventType = "typing_stop"
	EventUserOnline       EventType = "user_online"
	EventUserOffline      EventType = "user_offline"
	EventPostLiked        EventType = "post_liked"
	EventPostUnliked      EventType = "post_unliked"
	EventPostCommented    EventType = "post_commented"
	EventPostSaved        EventType = "post_saved"
	EventPostUnsaved      EventType = "post_unsaved"
	EventNewPost          EventType = "new_post"
)

// Event is a decoded realtime event. The concrete type is determined by the
// envelope's type field, decoded once at the channel boundary so subscribers
// never see raw JSON.
type Event interface {
	Type() EventType
}

// MessageDelivered carries a newly delivered message.
type MessageDelivered struct {
	Message domain.Message `json:"message"`
}

func (MessageDelivered) Type() EventType { return EventMessageDelivered }

// MessageRead reports that the reader has read a message.
type MessageRead struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
	ReaderID       string `json:"readerId"`
}

func (MessageRead) Type() EventType { return EventMessageRead }

// Typing reports a typing indicator change. Start is true for typing_start.
type Typing struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Start          bool   `json:"-"`
}

func (t Typing) Type() EventType {
	if t.Start {
		return EventTypingStart
	}
	return EventTypingStop
}

// Presence reports a user going online or offline.
type Presence struct {
	UserID string `json:"userId"`
	Online bool   `json:"-"`
}

func (p Presence) Type() EventType {
	if p.Online {
		return EventUserOnline
	}
	return EventUserOffline
}

// PostLiked carries the server's updated like counter after a like or
// unlike by UserID. Liked is false for post_unliked.
type PostLiked struct {
	PostID     string `json:"postId"`
	UserID     string `json:"userId"`
	LikesCount int    `json:"likesCount"`
	Liked      bool   `json:"-"`
}

func (p PostLiked) Type() EventType {
	if p.Liked {
		return EventPostLiked
	}
	return EventPostUnliked
}

// PostCommented carries the updated comment counter for a post.
type PostCommented struct {
	PostID        string `json:"postId"`
	UserID        string `json:"userId"`
	CommentsCount int    `json:"commentsCount"`
}

func (PostCommented) Type() EventType { return EventPostCommented }

// PostSaved carries the updated save counter after a save or unsave by
// UserID. Saved is false for post_unsaved.
type PostSaved struct {
	PostID     string `json:"postId"`
	UserID     string `json:"userId"`
	SavesCount int    `json:"savesCount"`
	Saved      bool   `json:"-"`
}

func (p PostSaved) Type() EventType {
	if p.Saved {
		return EventPostSaved
	}
	return EventPostUnsaved
}

// NewPost broadcasts a post created by another viewer.
type NewPost struct {
	Post domain.Post `json:"post"`
}

func (NewPost) Type() EventType { return EventNewPost }

// envelope is the wire format: a string tag plus an event-specific payload.
type envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// decodeEvent parses a wire envelope into a typed event.
func decodeEvent(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	var (
		event Event
		err   error
	)
	switch env.Type {
	case EventMessageDelivered:
		var e MessageDelivered
		err = json.Unmarshal(env.Data, &e)
		event = e
	case EventMessageRead:
		var e MessageRead
		err = json.Unmarshal(env.Data, &e)
		event = e
	case EventTypingStart, EventTypingStop:
		var e Typing
		err = json.Unmarshal(env.Data, &e)
		e.Start = env.Type == EventTypingStart
		event = e
	case EventUserOnline, EventUserOffline:
		var e Presence
		err = json.Unmarshal(env.Data, &e)
		e.Online = env.Type == EventUserOnline
		event = e
	case EventPostLiked, EventPostUnliked:
		var e PostLiked
		err = json.Unmarshal(env.Data, &e)
		e.Liked = env.Type == EventPostLiked
		event = e
	case EventPostCommented:
		var e PostCommented
		err = json.Unmarshal(env.Data, &e)
		event = e
	case EventPostSaved, EventPostUnsaved:
		var e PostSaved
		err = json.Unmarshal(env.Data, &e)
		e.Saved = env.Type == EventPostSaved
		event = e
	case EventNewPost:
		var e NewPost
		err = json.Unmarshal(env.Data, &e)
		event = e
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return event, nil
}

// encodeEvent builds the wire envelope for a client-originated event.
func encodeEvent(event Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.Type(), err)
	}
	return json.Marshal(envelope{Type: event.Type(), Data: data})
}
