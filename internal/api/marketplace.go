package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// MarketplaceService implements domain.MarketplaceService against
// /marketplace.
type MarketplaceService struct {
	client *Client
}

func NewMarketplaceService(client *Client) *MarketplaceService {
	return &MarketplaceService{client: client}
}

func (s *MarketplaceService) ListItems(ctx context.Context, filter domain.MarketplaceFilter, cursor string, limit int) (*domain.Page[domain.MarketplaceItem], error) {
	q := pageQuery(cursor, limit)
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(filter.MaxPrice, 'f', -1, 64))
	}
	return doList[domain.MarketplaceItem](ctx, s.client, "/marketplace", q)
}

func (s *MarketplaceService) SearchItems(ctx context.Context, query, cursor string, limit int) (*domain.Page[domain.MarketplaceItem], error) {
	q := pageQuery(cursor, limit)
	q.Set("q", query)
	return doList[domain.MarketplaceItem](ctx, s.client, "/marketplace/search", q)
}

func (s *MarketplaceService) GetItem(ctx context.Context, id string) (*domain.MarketplaceItem, error) {
	var item domain.MarketplaceItem
	if err := s.client.do(ctx, http.MethodGet, "/marketplace/"+url.PathEscape(id), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MarketplaceService) CreateItem(ctx context.Context, draft domain.MarketplaceDraft) (*domain.MarketplaceItem, error) {
	var item domain.MarketplaceItem
	if err := s.client.do(ctx, http.MethodPost, "/marketplace", nil, draft, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MarketplaceService) UpdateItem(ctx context.Context, id string, draft domain.MarketplaceDraft) (*domain.MarketplaceItem, error) {
	var item domain.MarketplaceItem
	if err := s.client.do(ctx, http.MethodPut, "/marketplace/"+url.PathEscape(id), nil, draft, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MarketplaceService) DeleteItem(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/marketplace/"+url.PathEscape(id), nil, nil, nil)
}

func (s *MarketplaceService) ToggleSave(ctx context.Context, id string) (*domain.ToggleState, error) {
	var resp struct {
		Saved      bool `json:"saved"`
		SavesCount int  `json:"savesCount"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/marketplace/"+url.PathEscape(id)+"/save", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.ToggleState{Active: resp.Saved, Count: resp.SavesCount}, nil
}

func (s *MarketplaceService) MarkViewed(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodPost, "/marketplace/"+url.PathEscape(id)+"/view", nil, nil, nil)
}
