package domain

import "time"

// User is an Oruma account.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	University string    `json:"university,omitempty"`
	Major      string    `json:"major,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Tokens is the persisted session state: bearer credentials plus the
// computed access-token expiry.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Valid reports whether an access token is present and not yet expired.
func (t Tokens) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// ShouldRefresh reports whether the access token is within threshold of
// expiring and a proactive refresh should run.
func (t Tokens) ShouldRefresh(now time.Time, threshold time.Duration) bool {
	return t.AccessToken != "" && !now.Before(t.ExpiresAt.Add(-threshold))
}

// University is an entry from the external university directory.
type University struct {
	Name     string   `json:"name"`
	Country  string   `json:"country"`
	Domains  []string `json:"domains"`
	WebPages []string `json:"web_pages"`
}
