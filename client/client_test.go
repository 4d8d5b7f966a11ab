package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/brandforge/content-engine/api/internal/entity"
)

func TestClient_TriggerWorkflow(t *testing.T) {
	sessionID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/workflows/brand-voice" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode trigger payload: %v", err)
		}
		if payload["companyName"] != "Acme" {
			t.Errorf("unexpected payload %v", payload)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"sessionId": sessionID,
			"message":   "Brand voice analysis workflow started",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "token-1")
	result, err := c.TriggerWorkflow(context.Background(), "/api/workflows/brand-voice", map[string]string{"companyName": "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.SessionID != sessionID {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestClient_TriggerWorkflow_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "webhook not configured"})
	}))
	defer srv.Close()

	c := New(srv.URL, "token-1")
	_, err := c.TriggerWorkflow(context.Background(), "/api/workflows/mascot", map[string]string{"description": "fox"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Message != "webhook not configured" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestClient_GetSession(t *testing.T) {
	sessionID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/workflows/sessions/"+sessionID.String() {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": entity.WorkflowSession{
				ID:           sessionID,
				WorkflowType: entity.WorkflowBrandVoice,
				Status:       entity.StatusCompleted,
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "token-1")
	session, err := c.GetSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID != sessionID || session.Status != entity.StatusCompleted {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestClient_GetSession_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "session not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, "token-1")
	_, err := c.GetSession(context.Background(), uuid.New())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
