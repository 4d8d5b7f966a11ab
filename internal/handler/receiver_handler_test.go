package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/brandforge/content-engine/api/internal/entity"
	"github.com/brandforge/content-engine/api/internal/repository"
	"github.com/brandforge/content-engine/api/internal/service"
)

func newReceiverContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/receivers/brand-voice", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func receiverFixture(t *testing.T) (*ReceiverHandler, *entity.WorkflowSession) {
	t.Helper()
	profileID := uuid.New()
	cfg := &entity.WebhookConfiguration{
		ID:            uuid.New(),
		WorkflowType:  entity.WorkflowBrandVoice,
		FieldMappings: map[string]string{"overview": "business_overview"},
	}
	session := &entity.WorkflowSession{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		WorkflowType:     entity.WorkflowBrandVoice,
		CompanyProfileID: &profileID,
		WebhookConfigID:  cfg.ID,
		Status:           entity.StatusProcessing,
	}
	sessions := &stubSessionsRepo{
		getByID: func(ctx context.Context, id uuid.UUID) (*entity.WorkflowSession, error) {
			if id == session.ID {
				copied := *session
				return &copied, nil
			}
			return nil, repository.ErrSessionNotFound
		},
		complete: func(ctx context.Context, id uuid.UUID, status entity.SessionStatus, data json.RawMessage, errMessage *string, downstream repository.DownstreamWrite) (*entity.WorkflowSession, bool, error) {
			updated := *session
			if updated.Status.Terminal() {
				return &updated, false, nil
			}
			updated.Status = status
			updated.SessionData = data
			updated.ErrorMessage = errMessage
			if downstream != nil {
				if err := downstream(ctx, nil, &updated); err != nil {
					return nil, false, err
				}
			}
			*session = updated
			return &updated, true, nil
		},
	}
	configs := &stubConfigsRepo{
		getByID: func(ctx context.Context, id uuid.UUID) (*entity.WebhookConfiguration, error) {
			if id == cfg.ID {
				return cfg, nil
			}
			return nil, repository.ErrWebhookConfigNotFound
		},
	}
	svc := service.NewWorkflowService(sessions, &stubProfilesRepo{}, &stubPostsRepo{}, configs, &recordingDispatcher{}, nil)
	return NewReceiverHandler(svc), session
}

func TestReceiverHandler_BrandVoice(t *testing.T) {
	h, session := receiverFixture(t)

	body := `{"session_id":"` + session.ID.String() + `","status":"completed","overview":"B2B analytics vendor","voice_tone":"confident"}`
	c, rec := newReceiverContext(t, body)
	if err := h.BrandVoice(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success   bool   `json:"success"`
		SessionID string `json:"session_id"`
		Status    string `json:"status"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.SessionID != session.ID.String() {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Status != string(entity.StatusCompleted) {
		t.Fatalf("expected completed status, got %q", resp.Status)
	}
	if resp.Message != "" {
		t.Fatalf("first delivery should not carry a message, got %q", resp.Message)
	}
}

func TestReceiverHandler_DuplicateDelivery(t *testing.T) {
	h, session := receiverFixture(t)

	body := `{"session_id":"` + session.ID.String() + `","status":"completed","overview":"B2B analytics vendor"}`
	c, rec := newReceiverContext(t, body)
	if err := h.BrandVoice(c); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("first delivery: expected 200, got %d", rec.Code)
	}

	// Engines retry on timeouts; the second delivery must ack without
	// touching the session again.
	c2, rec2 := newReceiverContext(t, body)
	if err := h.BrandVoice(c2); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if rec2.Code != http.StatusOK {
		t.Fatalf("second delivery: expected 200, got %d", rec2.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "session already processed" {
		t.Fatalf("expected already-processed message, got %q", resp.Message)
	}
}

func TestReceiverHandler_MissingSessionID(t *testing.T) {
	h, _ := receiverFixture(t)

	c, rec := newReceiverContext(t, `{"status":"completed","overview":"x"}`)
	if err := h.BrandVoice(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == "" {
		t.Fatal("expected error field in response")
	}
}

func TestReceiverHandler_UnknownSession(t *testing.T) {
	h, _ := receiverFixture(t)

	body := `{"session_id":"` + uuid.NewString() + `","status":"completed"}`
	c, rec := newReceiverContext(t, body)
	if err := h.BrandVoice(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReceiverHandler_KindMismatch(t *testing.T) {
	h, session := receiverFixture(t)

	// The session belongs to brand voice; delivering it to the mascot
	// receiver must look like an unknown session, not leak its existence.
	body := `{"session_id":"` + session.ID.String() + `","status":"completed"}`
	c, rec := newReceiverContext(t, body)
	if err := h.Mascot(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
