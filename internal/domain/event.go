package domain

import "time"

// Event is a campus event. IsRegistered is viewer-relative; AttendeesCount
// is the server's count of the registration set.
type Event struct {
	ID             string    `json:"id"`
	OrganizerID    string    `json:"organizerId"`
	OrganizerName  string    `json:"organizerName"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Location       string    `json:"location"`
	StartsAt       time.Time `json:"startsAt"`
	EndsAt         time.Time `json:"endsAt,omitempty"`
	AttendeesCount int       `json:"attendeesCount"`
	Capacity       int       `json:"capacity,omitempty"`
	IsRegistered   bool      `json:"isRegistered"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (e Event) EntityID() string { return e.ID }

// EventDraft is the payload for creating an event.
type EventDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt,omitempty"`
	Capacity    int       `json:"capacity,omitempty"`
}

// EventFilter narrows event listings.
type EventFilter struct {
	Category string
	From     time.Time
	To       time.Time
}
