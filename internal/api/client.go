package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/KaushikNagaraj77/oruma-go/internal/apperrors"
	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// TokenSource supplies the bearer token attached to authenticated requests.
// An empty string means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func() string

func (f TokenSourceFunc) AccessToken() string { return f() }

// Client is the shared request core for the Oruma REST API. Per-family
// services (posts, marketplace, events, messaging, auth) wrap it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a client for the API at baseURL. Requests to the primary
// backend carry no explicit timeout and rely on the transport's defaults;
// callers bound individual calls with their context.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
	}
}

// errorBody is the API's error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Transport(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transport("read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

func (c *Client) errorFromResponse(status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error.Message != "" {
			message = eb.Error.Message
		} else if eb.Message != "" {
			message = eb.Message
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(message, nil)
	case http.StatusNotFound:
		return apperrors.New(apperrors.CodeNotFound, message, status, nil)
	case http.StatusConflict:
		return apperrors.New(apperrors.CodeConflict, message, status, nil)
	case http.StatusBadRequest:
		return apperrors.BadRequest(message, nil)
	default:
		return apperrors.New(apperrors.CodeInternal, message, status, nil)
	}
}

// listResponse is the uniform wire shape for paginated listings.
type listResponse[T domain.Entity] struct {
	Items      []T    `json:"items"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
	Total      int    `json:"total,omitempty"`
}

// doList fetches one page from a listing endpoint.
func doList[T domain.Entity](ctx context.Context, c *Client, path string, query url.Values) (*domain.Page[T], error) {
	var resp listResponse[T]
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.Page[T]{
		Items:      resp.Items,
		HasMore:    resp.HasMore,
		NextCursor: resp.NextCursor,
		Total:      resp.Total,
	}, nil
}

func pageQuery(cursor string, limit int) url.Values {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
