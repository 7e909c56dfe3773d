package university

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KaushikNagaraj77/oruma-go/internal/apperrors"
	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// cacheTTL is the freshness window for cached directory results.
const cacheTTL = 24 * time.Hour

// Client looks universities up in the external directory. Lookups are
// bounded by an explicit timeout and results are cached in the durable
// store for cacheTTL; expired rows are evicted so the cache stays bounded.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      domain.SearchCache
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient creates a directory client. timeout bounds each request; the
// in-flight request is aborted when it elapses.
func NewClient(baseURL string, timeout time.Duration, cache domain.SearchCache, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		cache:      cache,
		timeout:    timeout,
		logger:     logger,
	}
}

// Search returns universities matching name, serving from the cache when a
// result newer than the freshness window exists.
func (c *Client) Search(ctx context.Context, name string) ([]domain.University, error) {
	key := normalizeQuery(name)

	if payload, fetchedAt, ok, err := c.cache.GetSearch(ctx, key); err != nil {
		c.logger.Warn("university cache read failed", "error", err)
	} else if ok && time.Since(fetchedAt) < cacheTTL {
		var cached []domain.University
		if uerr := json.Unmarshal(payload, &cached); uerr != nil {
			c.logger.Warn("discarding unreadable cache entry", "query", key, "error", uerr)
		} else {
			return cached, nil
		}
	}

	results, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(results); err == nil {
		now := time.Now()
		if err := c.cache.PutSearch(ctx, key, payload, now); err != nil {
			c.logger.Warn("university cache write failed", "error", err)
		}
		if deleted, err := c.cache.EvictExpiredSearches(ctx, now.Add(-cacheTTL)); err != nil {
			c.logger.Warn("university cache eviction failed", "error", err)
		} else if deleted > 0 {
			c.logger.Debug("evicted expired university searches", "deleted", deleted)
		}
	}

	return results, nil
}

func (c *Client) fetch(ctx context.Context, name string) ([]domain.University, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("name", name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Transport("university directory lookup", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport("read directory response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("directory returned status %d", resp.StatusCode), resp.StatusCode, nil)
	}

	var results []domain.University
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("unmarshal directory response: %w", err)
	}
	return results, nil
}

func normalizeQuery(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
