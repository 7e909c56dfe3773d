package domain

import "time"

// MessageStatus is the delivery state of a message as known to the sender.
type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

// Message is a direct message. Until the send RPC confirms, ID holds a
// client-generated temporary id and Pending is true; the confirmed message
// replaces the pending one in place, same position in the sequence.
type Message struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversationId"`
	SenderID       string        `json:"senderId"`
	ReceiverID     string        `json:"receiverId"`
	Content        string        `json:"content"`
	Status         MessageStatus `json:"status"`
	Pending        bool          `json:"-"`
	Failed         bool          `json:"-"`
	SentAt         time.Time     `json:"sentAt"`
}

func (m Message) EntityID() string { return m.ID }

// Conversation is a two-party thread. UnreadCount is scoped to the current
// viewer: incremented by one per inbound delivered message, reset to zero
// only by an explicit mark-read.
type Conversation struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
	UnreadCount  int       `json:"unreadCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c Conversation) EntityID() string { return c.ID }

// Peer returns the other participant's id, or "" if viewerID is not a
// participant.
func (c Conversation) Peer(viewerID string) string {
	for _, p := range c.Participants {
		if p != viewerID {
			return p
		}
	}
	return ""
}
