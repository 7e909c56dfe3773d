package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// MessagingServiceClient implements domain.MessagingService against
// /conversations.
type MessagingServiceClient struct {
	client *Client
}

func NewMessagingService(client *Client) *MessagingServiceClient {
	return &MessagingServiceClient{client: client}
}

func (s *MessagingServiceClient) ListConversations(ctx context.Context, cursor string, limit int) (*domain.Page[domain.Conversation], error) {
	return doList[domain.Conversation](ctx, s.client, "/conversations", pageQuery(cursor, limit))
}

func (s *MessagingServiceClient) ListMessages(ctx context.Context, conversationID, cursor string, limit int) (*domain.Page[domain.Message], error) {
	path := "/conversations/" + url.PathEscape(conversationID) + "/messages"
	return doList[domain.Message](ctx, s.client, path, pageQuery(cursor, limit))
}

// SendMessage delivers content to receiverID and returns the confirmed
// message carrying its permanent server id.
func (s *MessagingServiceClient) SendMessage(ctx context.Context, conversationID, receiverID, content string) (*domain.Message, error) {
	body := map[string]string{
		"conversationId": conversationID,
		"receiverId":     receiverID,
		"content":        content,
	}
	var msg domain.Message
	if err := s.client.do(ctx, http.MethodPost, "/messages", nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *MessagingServiceClient) MarkConversationRead(ctx context.Context, conversationID string) error {
	path := "/conversations/" + url.PathEscape(conversationID) + "/read"
	return s.client.do(ctx, http.MethodPost, path, nil, nil, nil)
}
