package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// EventsService implements domain.EventService against /events.
type EventsService struct {
	client *Client
}

func NewEventsService(client *Client) *EventsService {
	return &EventsService{client: client}
}

func (s *EventsService) ListEvents(ctx context.Context, filter domain.EventFilter, cursor string, limit int) (*domain.Page[domain.Event], error) {
	q := pageQuery(cursor, limit)
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if !filter.From.IsZero() {
		q.Set("from", filter.From.Format(time.RFC3339))
	}
	if !filter.To.IsZero() {
		q.Set("to", filter.To.Format(time.RFC3339))
	}
	return doList[domain.Event](ctx, s.client, "/events", q)
}

func (s *EventsService) SearchEvents(ctx context.Context, query, cursor string, limit int) (*domain.Page[domain.Event], error) {
	q := pageQuery(cursor, limit)
	q.Set("q", query)
	return doList[domain.Event](ctx, s.client, "/events/search", q)
}

func (s *EventsService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	if err := s.client.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventsService) CreateEvent(ctx context.Context, draft domain.EventDraft) (*domain.Event, error) {
	var event domain.Event
	if err := s.client.do(ctx, http.MethodPost, "/events", nil, draft, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventsService) UpdateEvent(ctx context.Context, id string, draft domain.EventDraft) (*domain.Event, error) {
	var event domain.Event
	if err := s.client.do(ctx, http.MethodPut, "/events/"+url.PathEscape(id), nil, draft, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventsService) DeleteEvent(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil, nil)
}

func (s *EventsService) ToggleRegistration(ctx context.Context, id string) (*domain.ToggleState, error) {
	var resp struct {
		IsRegistered   bool `json:"isRegistered"`
		AttendeesCount int  `json:"attendeesCount"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/events/"+url.PathEscape(id)+"/register", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.ToggleState{Active: resp.IsRegistered, Count: resp.AttendeesCount}, nil
}
