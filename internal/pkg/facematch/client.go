package facematch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/config"
)

// Verifier compares a freshly captured face image against the stored reference.
type Verifier interface {
	Verify(ctx context.Context, capturedURL, referenceURL string) (bool, error)
}

// Client calls the external face-match endpoint over HTTP.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewClient(cfg config.FaceMatchConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: timeout},
	}
}

// APIError represents a non-2xx answer from the face-match service
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("face match API error [%d]: %s", e.StatusCode, e.Body)
}

type matchRequest struct {
	CapturedImageURL  string `json:"capturedImageUrl"`
	ReferenceImageURL string `json:"referenceImageUrl"`
}

type matchResponse struct {
	Match bool `json:"match"`
}

func (c *Client) Verify(ctx context.Context, capturedURL, referenceURL string) (bool, error) {
	payload, err := json.Marshal(matchRequest{CapturedImageURL: capturedURL, ReferenceImageURL: referenceURL})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to build face match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("face match request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode face match response: %w", err)
	}
	return out.Match, nil
}
