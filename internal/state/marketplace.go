package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// Marketplace owns the viewer's listing collection. The realtime taxonomy
// carries no marketplace events, so merges come only from REST responses.
type Marketplace struct {
	base
	svc      domain.MarketplaceService
	pageSize int

	col    collection[domain.MarketplaceItem]
	filter domain.MarketplaceFilter
	query  string
	search searcher
}

func NewMarketplace(svc domain.MarketplaceService, pageSize int, debounce time.Duration, logger *slog.Logger) *Marketplace {
	return &Marketplace{
		base:     base{logger: logger},
		svc:      svc,
		pageSize: pageSize,
		col:      newCollection[domain.MarketplaceItem](),
		search:   searcher{delay: debounce},
	}
}

// SetFilter narrows subsequent loads. The next Load should pass reset=true.
func (m *Marketplace) SetFilter(filter domain.MarketplaceFilter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = filter
}

// Load fetches a page of listings; reset replaces, otherwise appends.
// hasMore=false makes further non-reset calls a no-op.
func (m *Marketplace) Load(ctx context.Context, reset bool) error {
	m.mu.Lock()
	if !reset && !m.col.canLoadMore() {
		m.mu.Unlock()
		return nil
	}
	cursor := ""
	if !reset {
		cursor = m.col.cursor
	}
	query := m.query
	filter := m.filter
	m.clearErr()
	m.mu.Unlock()

	var (
		page *domain.Page[domain.MarketplaceItem]
		err  error
	)
	if query != "" {
		page, err = m.svc.SearchItems(ctx, query, cursor, m.pageSize)
	} else {
		page, err = m.svc.ListItems(ctx, filter, cursor, m.pageSize)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.fail("load marketplace", err)
	}
	if reset {
		m.col.replace(page)
	} else {
		m.col.appendPage(page)
	}
	return nil
}

// Search replaces the collection with matches; only the latest query's
// results apply. An empty query degrades to a plain reload.
func (m *Marketplace) Search(ctx context.Context, query string) error {
	m.mu.Lock()
	m.query = query
	m.mu.Unlock()

	if query == "" {
		return m.Load(ctx, true)
	}

	sctx := m.search.begin(ctx)
	page, err := m.svc.SearchItems(sctx, query, "", m.pageSize)

	m.mu.Lock()
	defer m.mu.Unlock()
	if sctx.Err() != nil {
		return nil
	}
	if err != nil {
		return m.fail("search marketplace", err)
	}
	m.col.replace(page)
	return nil
}

// ToggleSave flips the viewer's save on a listing optimistically and
// reconciles with the server's counter, rolling back on failure.
func (m *Marketplace) ToggleSave(ctx context.Context, id string) error {
	_, err := runToggle(ctx, &m.mu, &m.col, id,
		func(it domain.MarketplaceItem) domain.ToggleState {
			return domain.ToggleState{Active: it.Saved, Count: it.SavesCount}
		},
		func(it *domain.MarketplaceItem, s domain.ToggleState) {
			it.Saved = s.Active
			it.SavesCount = s.Count
		},
		func(ctx context.Context) (*domain.ToggleState, error) {
			return m.svc.ToggleSave(ctx, id)
		},
	)
	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.fail("toggle save", err)
	}
	return nil
}

// Create inserts the server-confirmed listing at the head on success only.
func (m *Marketplace) Create(ctx context.Context, draft domain.MarketplaceDraft) (*domain.MarketplaceItem, error) {
	item, err := m.svc.CreateItem(ctx, draft)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return nil, m.fail("create listing", err)
	}
	m.col.prepend(*item)
	return item, nil
}

// Get returns the listing locally when present, falling back to the server.
func (m *Marketplace) Get(ctx context.Context, id string) (*domain.MarketplaceItem, error) {
	m.mu.Lock()
	if item, ok := m.col.get(id); ok {
		m.mu.Unlock()
		return &item, nil
	}
	m.mu.Unlock()

	item, err := m.svc.GetItem(ctx, id)
	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return nil, m.fail("get listing", err)
	}
	return item, nil
}

// Update replaces a listing's mutable fields after server confirmation.
func (m *Marketplace) Update(ctx context.Context, id string, draft domain.MarketplaceDraft) (*domain.MarketplaceItem, error) {
	item, err := m.svc.UpdateItem(ctx, id, draft)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return nil, m.fail("update listing", err)
	}
	m.col.swap(id, *item)
	return item, nil
}

// Remove deletes a listing locally only after the server confirms.
func (m *Marketplace) Remove(ctx context.Context, id string) error {
	err := m.svc.DeleteItem(ctx, id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.fail("delete listing", err)
	}
	m.col.remove(id)
	return nil
}

// MarkViewed records a view; telemetry only, failures swallowed.
func (m *Marketplace) MarkViewed(ctx context.Context, id string) {
	if err := m.svc.MarkViewed(ctx, id); err != nil {
		m.logger.Debug("mark viewed failed", "item_id", id, "error", err)
	}
}

// Items returns a snapshot of the collection.
func (m *Marketplace) Items() []domain.MarketplaceItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.col.snapshot()
}

func (m *Marketplace) HasMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.col.canLoadMore()
}

func (m *Marketplace) Close() {
	m.search.stop()
}
