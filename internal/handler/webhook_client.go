package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"google.golang.org/api/idtoken"
)

// WebhookClient posts trigger payloads to the workflow engine. Each
// configuration carries its own outbound URL, so clients are created per
// audience and cached.
type WebhookClient struct {
	client  *http.Client
	timeout time.Duration

	mu          sync.Mutex
	perAudience map[string]*http.Client
}

// NewWebhookClient builds a dispatch client. When `client == nil` an ID
// token client is created per target audience for service-to-service calls,
// falling back to a plain client outside those environments.
func NewWebhookClient(client *http.Client, timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookClient{
		client:      client,
		timeout:     timeout,
		perAudience: make(map[string]*http.Client),
	}
}

// Dispatch posts the payload to the outbound webhook URL. Any response at
// or above 400 is an error; the engine's error body is surfaced when it can
// be decoded.
func (w *WebhookClient) Dispatch(ctx context.Context, target string, payload any, requestID string) error {
	// The deadline rides on the context so it holds for ID-token clients
	// too, which carry no client-level timeout.
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := w.clientFor(target).Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook error: %s", extractWebhookError(resp.Body))
	}
	return nil
}

func (w *WebhookClient) clientFor(target string) *http.Client {
	if w.client != nil {
		return w.client
	}

	audience := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		audience = u.Scheme + "://" + u.Host
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if client, ok := w.perAudience[audience]; ok {
		return client
	}

	client, err := idtoken.NewClient(context.Background(), audience)
	if err != nil {
		client = &http.Client{Timeout: w.timeout}
	}
	w.perAudience[audience] = client
	return client
}

func extractWebhookError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "workflow engine returned an error"
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(data)
}
