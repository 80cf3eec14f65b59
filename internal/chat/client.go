// Package chat forwards user queries to the external chat backend and
// relays its responses verbatim.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client posts chat queries to the external backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a chat client for the given backend base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

// Send forwards the query and returns the backend's status code and raw
// JSON body so the caller can relay both unchanged.
func (c *Client) Send(ctx context.Context, userID uuid.UUID, query string) (int, []byte, error) {
	payload, err := json.Marshal(chatRequest{Query: query, UserID: userID.String()})
	if err != nil {
		return 0, nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("chat backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read chat response: %w", err)
	}
	return resp.StatusCode, body, nil
}
