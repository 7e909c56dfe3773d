// Package state holds the feature state containers: the single source of
// truth for each collection (posts, marketplace items, events,
// conversations) as observed by the current viewer. Containers apply
// optimistic local mutations before server confirmation, reconcile with the
// server's authoritative values, and merge realtime events into the same
// collection keyed by entity id.
package state

import (
	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// collection is an ordered set of entities with an id index and
// cursor-pagination state. All access is serialized by the owning
// container's mutex.
type collection[T domain.Entity] struct {
	items   []T
	index   map[string]int
	cursor  string
	hasMore bool
	loaded  bool
}

func newCollection[T domain.Entity]() collection[T] {
	return collection[T]{index: make(map[string]int)}
}

// replace swaps the whole collection for one page.
func (c *collection[T]) replace(page *domain.Page[T]) {
	c.items = append([]T(nil), page.Items...)
	c.cursor = page.NextCursor
	c.hasMore = page.HasMore
	c.loaded = true
	c.reindex()
}

// appendPage appends one page, skipping ids already present.
func (c *collection[T]) appendPage(page *domain.Page[T]) {
	for _, item := range page.Items {
		if _, ok := c.index[item.EntityID()]; ok {
			continue
		}
		c.index[item.EntityID()] = len(c.items)
		c.items = append(c.items, item)
	}
	c.cursor = page.NextCursor
	c.hasMore = page.HasMore
	c.loaded = true
}

// canLoadMore reports whether a continuation request may be issued.
func (c *collection[T]) canLoadMore() bool {
	return !c.loaded || c.hasMore
}

func (c *collection[T]) get(id string) (T, bool) {
	if i, ok := c.index[id]; ok {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// patch applies fn to the entity with the given id. An absent id is a
// no-op, which is what makes merges and rollbacks safe after an entity has
// paged out.
func (c *collection[T]) patch(id string, fn func(*T)) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	fn(&c.items[i])
	return true
}

// prepend inserts an entity at the head unless its id is already present.
func (c *collection[T]) prepend(item T) bool {
	if _, ok := c.index[item.EntityID()]; ok {
		return false
	}
	c.items = append([]T{item}, c.items...)
	c.reindex()
	return true
}

// appendItem adds an entity at the tail unless its id is already present.
func (c *collection[T]) appendItem(item T) bool {
	if _, ok := c.index[item.EntityID()]; ok {
		return false
	}
	c.index[item.EntityID()] = len(c.items)
	c.items = append(c.items, item)
	return true
}

// swap replaces the entity with oldID in place, keeping its position in the
// sequence, and reindexes under the replacement's id. This is how a pending
// message with a temporary id becomes the server-confirmed one.
func (c *collection[T]) swap(oldID string, item T) bool {
	i, ok := c.index[oldID]
	if !ok {
		return false
	}
	c.items[i] = item
	delete(c.index, oldID)
	c.index[item.EntityID()] = i
	return true
}

func (c *collection[T]) remove(id string) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.reindex()
	return true
}

// snapshot returns a copy callers may hold without racing the container.
func (c *collection[T]) snapshot() []T {
	return append([]T(nil), c.items...)
}

func (c *collection[T]) len() int {
	return len(c.items)
}

func (c *collection[T]) reindex() {
	c.index = make(map[string]int, len(c.items))
	for i, item := range c.items {
		c.index[item.EntityID()] = i
	}
}
