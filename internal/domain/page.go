package domain

// Entity is anything addressable by a stable server-assigned id. Collections
// use the id as the join key when merging REST responses and realtime events.
type Entity interface {
	EntityID() string
}

// Page is one page of a cursor-paginated listing. NextCursor is opaque to
// the client and only meaningful when HasMore is true.
type Page[T Entity] struct {
	Items      []T
	HasMore    bool
	NextCursor string
	Total      int
}

// ToggleState is the viewer-relative state of a social interaction: whether
// the viewer is a member of the interaction set, and the set's size as last
// reported by the server.
type ToggleState struct {
	Active bool
	Count  int
}
