// Package mlclient forwards recommendation calls to the external ML service.
// No recommendation logic lives in this repo; the service is an opaque
// collaborator reached over HTTP.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the recommendation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Recommend forwards the user's preference bag and returns the service's
// response verbatim.
func (c *Client) Recommend(ctx context.Context, preferences map[string]any) (json.RawMessage, error) {
	return c.post(ctx, "/recommend", map[string]any{"preferences": preferences})
}

// Train triggers a model training run.
func (c *Client) Train(ctx context.Context) (json.RawMessage, error) {
	return c.post(ctx, "/train", nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ml service request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("ml service read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("ml service error: %s", msg)
	}
	return json.RawMessage(data), nil
}
