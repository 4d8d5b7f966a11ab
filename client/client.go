// Package client is a small Go consumer of the API's workflow surface. It
// covers triggering workflows and polling their sessions to completion.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/content-engine/api/internal/entity"
)

// ErrSessionNotFound indicates the API does not know the session.
var ErrSessionNotFound = errors.New("workflow session not found")

// APIError carries a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Client calls the API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures optional dependencies.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New builds a client for the given API base URL and bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TriggerResult is the acknowledgement returned by trigger endpoints.
type TriggerResult struct {
	Success   bool      `json:"success"`
	SessionID uuid.UUID `json:"sessionId"`
	Message   string    `json:"message"`
}

// TriggerWorkflow starts a workflow and returns the session to poll.
// Endpoint is the trigger path, for example "/api/workflows/brand-voice".
func (c *Client) TriggerWorkflow(ctx context.Context, endpoint string, payload any) (*TriggerResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal trigger payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trigger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, apiError(resp)
	}

	var result TriggerResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode trigger response: %w", err)
	}
	return &result, nil
}

// GetSession fetches the current state of a workflow session.
func (c *Client) GetSession(ctx context.Context, sessionID uuid.UUID) (*entity.WorkflowSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/workflows/sessions/"+sessionID.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp)
	}

	var envelope struct {
		Data entity.WorkflowSession `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	return &envelope.Data, nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := "request failed"
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		} else if payload.Error != "" {
			message = payload.Error
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
