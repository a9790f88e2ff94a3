// Package gatherly is a typed client for the Gatherly event-registration
// platform's REST API. A Client wraps the events and payments endpoints with
// request/response shapes matching the platform's JSON contract.
package gatherly

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

const (
	// DefaultBaseURL is the platform's production host.
	DefaultBaseURL = "https://api.gatherly.events"

	// sourceSDK marks register calls as SDK-originated.
	sourceSDK = "go-sdk"

	headerAPIKey = "x-api-key"
)

// Config carries everything needed to construct a Client. Only APIKey is
// required.
type Config struct {
	APIKey  string
	BaseURL string
	// Headers are merged into every request after the SDK defaults, so a
	// caller-supplied header wins on conflict. The API key header is always
	// sent regardless.
	Headers map[string]string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client is a stateless facade over the platform API. It owns the API key,
// base URL and extra headers and nothing else.
type Client struct {
	apiKey     string
	baseURL    string
	headers    map[string]string
	httpClient *http.Client

	Events   *EventsService
	Payments *PaymentsService
}

// New constructs a Client for the production host from a bare API key.
func New(apiKey string) *Client {
	return NewWithConfig(Config{APIKey: apiKey})
}

// NewWithConfig constructs a Client from a full Config.
func NewWithConfig(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		headers:    cfg.Headers,
		httpClient: httpClient,
	}
	c.Events = &EventsService{client: c}
	c.Payments = &PaymentsService{client: c}
	return c
}

// envelope is the platform's standard response wrapper; every endpoint
// returns its payload under "data".
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// do issues one request and decodes the enveloped response into out. Non-2xx
// responses become an *APIError carrying the server message, status and raw
// body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		decoded := map[string]interface{}{}
		_ = json.Unmarshal(raw, &decoded)
		return &APIError{
			Message: messageFromBody(decoded, resp.StatusCode),
			Status:  resp.StatusCode,
			Body:    decoded,
		}
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
