package domain

import "time"

// MarketplaceItem is a listing in the student marketplace.
type MarketplaceItem struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition,omitempty"`
	Images      []string  `json:"images,omitempty"`
	SavesCount  int       `json:"savesCount"`
	Saved       bool      `json:"saved"`
	Sold        bool      `json:"sold"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (m MarketplaceItem) EntityID() string { return m.ID }

// MarketplaceDraft is the payload for creating a listing.
type MarketplaceDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// MarketplaceFilter narrows marketplace listings.
type MarketplaceFilter struct {
	Category string
	MaxPrice float64
}
