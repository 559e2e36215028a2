// Package api talks to the merchant-support assistant service over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iksnae/merchant-support/internal"
)

const maxErrorBody = 512

var (
	_ internal.Assistant          = (*Client)(nil)
	_ internal.ConversationLister = (*Client)(nil)
	_ internal.FeedbackSink       = (*Client)(nil)
	_ internal.AnalyticsSource    = (*Client)(nil)
)

// Client handles communication with the assistant service
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a new client for the service rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends a fresh question
func (c *Client) Chat(ctx context.Context, req internal.ChatRequest) (*internal.ChatResponse, error) {
	var resp internal.ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/chat", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Clarify answers the assistant's follow-up question
func (c *Client) Clarify(ctx context.Context, req internal.ClarifyRequest) (*internal.ChatResponse, error) {
	var resp internal.ChatResponse
	if err := c.do(ctx, "clarify", http.MethodPost, "/clarify", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionHistory loads every message of a session
func (c *Client) SessionHistory(ctx context.Context, sessionID string) ([]internal.Message, error) {
	var resp struct {
		Messages []internal.Message `json:"messages"`
	}
	if err := c.do(ctx, "history", http.MethodGet, "/history/"+url.PathEscape(sessionID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Conversations lists recent conversations, most recent first
func (c *Client) Conversations(ctx context.Context) ([]internal.ConversationSummary, error) {
	var resp struct {
		Conversations []internal.ConversationSummary `json:"conversations"`
	}
	if err := c.do(ctx, "history", http.MethodGet, "/history", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// StoreFeedback submits a vote and reports whether the service accepted it
func (c *Client) StoreFeedback(ctx context.Context, req internal.FeedbackRequest) (bool, error) {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, "feedback", http.MethodPost, "/feedback/store", nil, req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Dashboard fetches the analytics snapshot for filters
func (c *Client) Dashboard(ctx context.Context, filters internal.AnalyticsFilters) (*internal.AnalyticsSnapshot, error) {
	var resp struct {
		Success bool                        `json:"success"`
		Data    *internal.AnalyticsSnapshot `json:"data"`
		Error   string                      `json:"error"`
	}
	const endpoint = "/analytics/dashboard"
	if err := c.do(ctx, "analytics", http.MethodGet, endpoint, filters.Query(), nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, &internal.APIError{Op: "analytics", Endpoint: endpoint, Err: errors.New(msg)}
	}
	if resp.Data == nil {
		return nil, &internal.APIError{Op: "analytics", Endpoint: endpoint, Err: errors.New("response has no data")}
	}
	return resp.Data, nil
}

// AuthURL returns the address that starts linking shop to the assistant
func (c *Client) AuthURL(shop string) string {
	return internal.ConnectURL(c.baseURL, shop)
}

// Ping checks that the service answers
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	_, err := c.Conversations(ctx)
	return time.Since(start), err
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	internal.LogDebug("%s %s", method, endpoint)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &internal.APIError{Op: op, Endpoint: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &internal.APIError{
			Op:         op,
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Err:        errors.New(errorMessage(data, resp.Status)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &internal.APIError{Op: op, Endpoint: path, Err: &internal.ParseError{Source: "response", Key: path, Err: err}}
	}
	return nil
}

// errorMessage prefers the service's {"error": "..."} text over the raw body
func errorMessage(body []byte, status string) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}
