package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	"github.com/KaushikNagaraj77/oruma-go/internal/realtime"
	"github.com/google/uuid"
)

// typingTTL is how long a typing indicator stays visible without a stop
// event.
const typingTTL = 5 * time.Second

// Messaging owns the viewer's conversations and per-conversation message
// threads. Sends are optimistic: the message appears immediately under a
// temporary id and is replaced in place by the server-confirmed one; a
// failed send stays visible and retryable.
type Messaging struct {
	base
	svc      domain.MessagingService
	bus      realtime.Bus
	viewerID string
	pageSize int

	convs   collection[domain.Conversation]
	threads map[string]*collection[domain.Message]
	typing  map[string]map[string]time.Time
	online  map[string]bool
	subs    []realtime.Subscription
}

// NewMessaging creates the messaging container and subscribes it to message,
// typing and presence events. Close must be called on teardown.
func NewMessaging(svc domain.MessagingService, bus realtime.Bus, viewerID string, pageSize int, logger *slog.Logger) *Messaging {
	m := &Messaging{
		base:     base{logger: logger},
		svc:      svc,
		bus:      bus,
		viewerID: viewerID,
		pageSize: pageSize,
		convs:    newCollection[domain.Conversation](),
		threads:  make(map[string]*collection[domain.Message]),
		typing:   make(map[string]map[string]time.Time),
		online:   make(map[string]bool),
	}

	m.subs = []realtime.Subscription{
		bus.On(realtime.EventMessageDelivered, m.onMessageDelivered),
		bus.On(realtime.EventMessageRead, m.onMessageRead),
		bus.On(realtime.EventTypingStart, m.onTyping),
		bus.On(realtime.EventTypingStop, m.onTyping),
		bus.On(realtime.EventUserOnline, m.onPresence),
		bus.On(realtime.EventUserOffline, m.onPresence),
	}
	return m
}

// LoadConversations fetches a page of the conversation list.
func (m *Messaging) LoadConversations(ctx context.Context, reset bool) error {
	m.mu.Lock()
	if !reset && !m.convs.canLoadMore() {
		m.mu.Unlock()
		return nil
	}
	cursor := ""
	if !reset {
		cursor = m.convs.cursor
	}
	m.clearErr()
	m.mu.Unlock()

	page, err := m.svc.ListConversations(ctx, cursor, m.pageSize)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.fail("load conversations", err)
	}
	if reset {
		m.convs.replace(page)
	} else {
		m.convs.appendPage(page)
	}
	return nil
}

// LoadMessages fetches a page of one conversation's thread.
func (m *Messaging) LoadMessages(ctx context.Context, conversationID string, reset bool) error {
	m.mu.Lock()
	thread := m.threadFor(conversationID)
	if !reset && !thread.canLoadMore() {
		m.mu.Unlock()
		return nil
	}
	cursor := ""
	if !reset {
		cursor = thread.cursor
	}
	m.clearErr()
	m.mu.Unlock()

	page, err := m.svc.ListMessages(ctx, conversationID, cursor, m.pageSize)

	m.mu.Lock()
	defer m.mu.Unlock()
	thread = m.threadFor(conversationID)
	if err != nil {
		return m.fail("load messages", err)
	}
	if reset {
		thread.replace(page)
	} else {
		thread.appendPage(page)
	}
	return nil
}

// Send inserts the message immediately under a temporary id with status
// "sent", then replaces it in place with the server-confirmed message. On
// failure the entry is marked failed, keeping the user's input for retry.
// The temporary id is returned so callers can track the entry.
func (m *Messaging) Send(ctx context.Context, conversationID, receiverID, content string) (string, error) {
	temp := domain.Message{
		ID:             "tmp-" + uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       m.viewerID,
		ReceiverID:     receiverID,
		Content:        content,
		Status:         domain.MessageSent,
		Pending:        true,
		SentAt:         time.Now(),
	}

	m.mu.Lock()
	m.threadFor(conversationID).appendItem(temp)
	m.setLastMessageLocked(conversationID, temp)
	m.clearErr()
	m.mu.Unlock()

	return temp.ID, m.resolveSend(ctx, conversationID, receiverID, content, temp.ID)
}

// Retry re-sends a failed message's original content under a new temporary
// id. The entry transitions back to pending in place and resolves like a
// first send.
func (m *Messaging) Retry(ctx context.Context, conversationID, messageID string) (string, error) {
	m.mu.Lock()
	thread := m.threadFor(conversationID)
	failed, ok := thread.get(messageID)
	if !ok || !failed.Failed {
		m.mu.Unlock()
		return "", nil
	}

	retry := failed
	retry.ID = "tmp-" + uuid.NewString()
	retry.Failed = false
	retry.Pending = true
	retry.Status = domain.MessageSent
	thread.swap(messageID, retry)
	m.clearErr()
	m.mu.Unlock()

	return retry.ID, m.resolveSend(ctx, conversationID, retry.ReceiverID, retry.Content, retry.ID)
}

func (m *Messaging) resolveSend(ctx context.Context, conversationID, receiverID, content, tempID string) error {
	confirmed, err := m.svc.SendMessage(ctx, conversationID, receiverID, content)

	m.mu.Lock()
	defer m.mu.Unlock()
	thread := m.threadFor(conversationID)
	if err != nil {
		thread.patch(tempID, func(msg *domain.Message) { msg.Failed = true })
		return m.fail("send message", err)
	}

	thread.swap(tempID, *confirmed)
	m.setLastMessageLocked(conversationID, *confirmed)
	return nil
}

// MarkRead zeroes the conversation's unread counter immediately and emits a
// fire-and-forget read receipt for every locally-held unread message
// addressed to the viewer. No confirmation round-trip gates the local
// zeroing; the REST call is best effort.
func (m *Messaging) MarkRead(ctx context.Context, conversationID string) {
	m.mu.Lock()
	m.convs.patch(conversationID, func(c *domain.Conversation) { c.UnreadCount = 0 })

	var receipts []realtime.MessageRead
	if thread, ok := m.threads[conversationID]; ok {
		for i := range thread.items {
			msg := &thread.items[i]
			if msg.ReceiverID == m.viewerID && msg.Status != domain.MessageRead {
				msg.Status = domain.MessageRead
				receipts = append(receipts, realtime.MessageRead{
					ConversationID: conversationID,
					MessageID:      msg.ID,
					ReaderID:       m.viewerID,
				})
			}
		}
	}
	m.mu.Unlock()

	for _, r := range receipts {
		m.bus.Emit(r)
	}
	if err := m.svc.MarkConversationRead(ctx, conversationID); err != nil {
		m.logger.Debug("mark conversation read failed", "conversation_id", conversationID, "error", err)
	}
}

// StartTyping announces the viewer typing in a conversation.
func (m *Messaging) StartTyping(conversationID string) {
	m.bus.Emit(realtime.Typing{ConversationID: conversationID, UserID: m.viewerID, Start: true})
}

// StopTyping clears the viewer's typing indicator.
func (m *Messaging) StopTyping(conversationID string) {
	m.bus.Emit(realtime.Typing{ConversationID: conversationID, UserID: m.viewerID, Start: false})
}

// Conversations returns a snapshot of the conversation list.
func (m *Messaging) Conversations() []domain.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.convs.snapshot()
}

// Messages returns a snapshot of one conversation's thread.
func (m *Messaging) Messages(conversationID string) []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if thread, ok := m.threads[conversationID]; ok {
		return thread.snapshot()
	}
	return nil
}

// UnreadTotal sums unread counters across conversations.
func (m *Messaging) UnreadTotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, c := range m.convs.items {
		total += c.UnreadCount
	}
	return total
}

// TypingPeers lists users currently typing in a conversation, dropping
// indicators older than typingTTL.
func (m *Messaging) TypingPeers(conversationID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var peers []string
	for user, expires := range m.typing[conversationID] {
		if now.After(expires) {
			delete(m.typing[conversationID], user)
			continue
		}
		peers = append(peers, user)
	}
	return peers
}

// IsOnline reports the last known presence of a user.
func (m *Messaging) IsOnline(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online[userID]
}

// Close unsubscribes from the realtime channel.
func (m *Messaging) Close() {
	for _, sub := range m.subs {
		m.bus.Off(sub)
	}
	m.subs = nil
}

// threadFor returns the thread collection for a conversation, creating it
// if needed. Caller holds m.mu.
func (m *Messaging) threadFor(conversationID string) *collection[domain.Message] {
	thread, ok := m.threads[conversationID]
	if !ok {
		c := newCollection[domain.Message]()
		thread = &c
		m.threads[conversationID] = thread
	}
	return thread
}

// setLastMessageLocked updates a conversation's preview. Caller holds m.mu.
func (m *Messaging) setLastMessageLocked(conversationID string, msg domain.Message) {
	m.convs.patch(conversationID, func(c *domain.Conversation) {
		last := msg
		c.LastMessage = &last
		c.UpdatedAt = msg.SentAt
	})
}

// onMessageDelivered handles both directions: an inbound message bumps the
// conversation's unread counter by exactly one and lands in the thread; a
// receipt for the viewer's own message advances its status to delivered.
// Events for conversations not held locally are dropped.
func (m *Messaging) onMessageDelivered(event realtime.Event) {
	e, ok := event.(realtime.MessageDelivered)
	if !ok {
		return
	}
	msg := e.Message

	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.SenderID == m.viewerID {
		if thread, ok := m.threads[msg.ConversationID]; ok {
			thread.patch(msg.ID, func(existing *domain.Message) {
				if existing.Status == domain.MessageSent {
					existing.Status = domain.MessageDelivered
				}
			})
		}
		return
	}

	if _, ok := m.convs.get(msg.ConversationID); !ok {
		return
	}

	if thread, ok := m.threads[msg.ConversationID]; ok {
		if !thread.appendItem(msg) {
			// replayed event, already merged
			return
		}
	}

	m.convs.patch(msg.ConversationID, func(c *domain.Conversation) {
		c.UnreadCount++
		last := msg
		c.LastMessage = &last
		c.UpdatedAt = msg.SentAt
	})
}

// onMessageRead marks the viewer's message as read by its receiver. The
// merge sets state rather than counting, so replays are harmless.
func (m *Messaging) onMessageRead(event realtime.Event) {
	e, ok := event.(realtime.MessageRead)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if thread, ok := m.threads[e.ConversationID]; ok {
		thread.patch(e.MessageID, func(msg *domain.Message) {
			msg.Status = domain.MessageRead
		})
	}
}

func (m *Messaging) onTyping(event realtime.Event) {
	e, ok := event.(realtime.Typing)
	if !ok || e.UserID == m.viewerID {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !e.Start {
		delete(m.typing[e.ConversationID], e.UserID)
		return
	}
	if m.typing[e.ConversationID] == nil {
		m.typing[e.ConversationID] = make(map[string]time.Time)
	}
	m.typing[e.ConversationID][e.UserID] = time.Now().Add(typingTTL)
}

func (m *Messaging) onPresence(event realtime.Event) {
	e, ok := event.(realtime.Presence)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online[e.UserID] = e.Online
}
