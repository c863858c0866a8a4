// Package omdb calls the OMDb HTTP API for movie/web-series metadata.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.omdbapi.com"

// ErrNotFound is returned when the provider reports no match for a title or
// search query.
var ErrNotFound = errors.New("omdb: no results")

// Detail is a single-title response. All provider fields are strings; Raw
// keeps the full payload so callers can retain fields without a column here.
type Detail struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	ImdbID     string `json:"imdbID"`
	ImdbRating string `json:"imdbRating"`
	Poster     string `json:"Poster"`
	Type       string `json:"Type"`

	Raw map[string]any `json:"-"`
}

// SearchItem is one entry of a search response.
type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// Client calls the OMDb API with a fixed API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a client. An empty baseURL selects the public API.
func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchByTitle looks up one title (the provider's t= query).
func (c *Client) FetchByTitle(ctx context.Context, title string) (Detail, error) {
	if strings.TrimSpace(title) == "" {
		return Detail{}, fmt.Errorf("omdb: title required")
	}
	body, err := c.get(ctx, url.Values{"t": {title}})
	if err != nil {
		return Detail{}, err
	}
	var detail Detail
	if err := json.Unmarshal(body, &detail); err != nil {
		return Detail{}, fmt.Errorf("omdb: decode response: %w", err)
	}
	if err := checkResponse(body); err != nil {
		return Detail{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err == nil {
		delete(raw, "Response")
		detail.Raw = raw
	}
	if detail.ImdbID == "" {
		return Detail{}, fmt.Errorf("omdb: response missing imdbID")
	}
	return detail, nil
}

// Search runs a free-text search (the provider's s= query).
func (c *Client) Search(ctx context.Context, query string) ([]SearchItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("omdb: search query required")
	}
	body, err := c.get(ctx, url.Values{"s": {query}})
	if err != nil {
		return nil, err
	}
	if err := checkResponse(body); err != nil {
		return nil, err
	}
	var payload struct {
		Search []SearchItem `json:"Search"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("omdb: decode search response: %w", err)
	}
	return payload.Search, nil
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("omdb: api error: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("omdb: read response: %w", err)
	}
	return body, nil
}

// checkResponse maps the provider's in-band Response/Error envelope. OMDb
// answers HTTP 200 with Response:"False" when nothing matched.
func checkResponse(body []byte) error {
	var envelope struct {
		Response string `json:"Response"`
		Error    string `json:"Error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("omdb: decode response: %w", err)
	}
	if strings.EqualFold(envelope.Response, "False") {
		if strings.Contains(strings.ToLower(envelope.Error), "not found") {
			return ErrNotFound
		}
		if envelope.Error != "" {
			return fmt.Errorf("omdb: api error: %s", envelope.Error)
		}
		return ErrNotFound
	}
	return nil
}
