package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// Events owns the campus-event collection and the viewer's registration
// state.
type Events struct {
	base
	svc      domain.EventService
	pageSize int

	col    collection[domain.Event]
	filter domain.EventFilter
	query  string
	search searcher
}

func NewEvents(svc domain.EventService, pageSize int, debounce time.Duration, logger *slog.Logger) *Events {
	return &Events{
		base:     base{logger: logger},
		svc:      svc,
		pageSize: pageSize,
		col:      newCollection[domain.Event](),
		search:   searcher{delay: debounce},
	}
}

// SetFilter narrows subsequent loads. The next Load should pass reset=true.
func (e *Events) SetFilter(filter domain.EventFilter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = filter
}

// Load fetches a page of events; reset replaces, otherwise appends.
// hasMore=false makes further non-reset calls a no-op.
func (e *Events) Load(ctx context.Context, reset bool) error {
	e.mu.Lock()
	if !reset && !e.col.canLoadMore() {
		e.mu.Unlock()
		return nil
	}
	cursor := ""
	if !reset {
		cursor = e.col.cursor
	}
	query := e.query
	filter := e.filter
	e.clearErr()
	e.mu.Unlock()

	var (
		page *domain.Page[domain.Event]
		err  error
	)
	if query != "" {
		page, err = e.svc.SearchEvents(ctx, query, cursor, e.pageSize)
	} else {
		page, err = e.svc.ListEvents(ctx, filter, cursor, e.pageSize)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return e.fail("load events", err)
	}
	if reset {
		e.col.replace(page)
	} else {
		e.col.appendPage(page)
	}
	return nil
}

// Search replaces the collection with matches; only the latest query's
// results apply. An empty query degrades to a plain reload.
func (e *Events) Search(ctx context.Context, query string) error {
	e.mu.Lock()
	e.query = query
	e.mu.Unlock()

	if query == "" {
		return e.Load(ctx, true)
	}

	sctx := e.search.begin(ctx)
	page, err := e.svc.SearchEvents(sctx, query, "", e.pageSize)

	e.mu.Lock()
	defer e.mu.Unlock()
	if sctx.Err() != nil {
		return nil
	}
	if err != nil {
		return e.fail("search events", err)
	}
	e.col.replace(page)
	return nil
}

// ToggleRegistration flips the viewer's registration optimistically and
// reconciles with the server's attendee count, rolling back on failure.
func (e *Events) ToggleRegistration(ctx context.Context, id string) error {
	_, err := runToggle(ctx, &e.mu, &e.col, id,
		func(ev domain.Event) domain.ToggleState {
			return domain.ToggleState{Active: ev.IsRegistered, Count: ev.AttendeesCount}
		},
		func(ev *domain.Event, s domain.ToggleState) {
			ev.IsRegistered = s.Active
			ev.AttendeesCount = s.Count
		},
		func(ctx context.Context) (*domain.ToggleState, error) {
			return e.svc.ToggleRegistration(ctx, id)
		},
	)
	if err != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.fail("toggle registration", err)
	}
	return nil
}

// Create inserts the server-confirmed event at the head on success only.
func (e *Events) Create(ctx context.Context, draft domain.EventDraft) (*domain.Event, error) {
	event, err := e.svc.CreateEvent(ctx, draft)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return nil, e.fail("create event", err)
	}
	e.col.prepend(*event)
	return event, nil
}

// Get returns the event locally when present, falling back to the server.
func (e *Events) Get(ctx context.Context, id string) (*domain.Event, error) {
	e.mu.Lock()
	if event, ok := e.col.get(id); ok {
		e.mu.Unlock()
		return &event, nil
	}
	e.mu.Unlock()

	event, err := e.svc.GetEvent(ctx, id)
	if err != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		return nil, e.fail("get event", err)
	}
	return event, nil
}

// Update replaces an event's mutable fields after server confirmation.
func (e *Events) Update(ctx context.Context, id string, draft domain.EventDraft) (*domain.Event, error) {
	event, err := e.svc.UpdateEvent(ctx, id, draft)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return nil, e.fail("update event", err)
	}
	e.col.swap(id, *event)
	return event, nil
}

// Remove deletes an event locally only after the server confirms.
func (e *Events) Remove(ctx context.Context, id string) error {
	err := e.svc.DeleteEvent(ctx, id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return e.fail("delete event", err)
	}
	e.col.remove(id)
	return nil
}

// All returns a snapshot of the collection.
func (e *Events) All() []domain.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.col.snapshot()
}

func (e *Events) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.col.canLoadMore()
}

func (e *Events) Close() {
	e.search.stop()
}
