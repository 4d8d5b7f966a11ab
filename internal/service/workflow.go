package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/entity"
	"github.com/brandforge/content-engine/api/internal/repository"
)

var (
	// ErrWorkflowNotConfigured indicates no active webhook configuration
	// exists for the workflow type. Triggers fail before any state changes.
	ErrWorkflowNotConfigured = errors.New("webhook not configured")

	// ErrDispatchFailed indicates the outbound call to the workflow engine
	// failed after the session was created; the session has been moved to
	// error so the caller is not left polling forever.
	ErrDispatchFailed = errors.New("workflow dispatch failed")
)

// ValidationError indicates the trigger or callback payload is malformed.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// WebhookDispatcher delivers trigger payloads to the external workflow
// engine.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, url string, payload any, requestID string) error
}

// ReceiveOutcome reports what a callback changed. Profile and Post are set
// only for the workflow kinds that write them and only on the transition
// that actually committed.
type ReceiveOutcome struct {
	Session          *entity.WorkflowSession
	Profile          *entity.CompanyProfile
	Post             *entity.Post
	PostsCollected   int
	AlreadyProcessed bool
}

// WorkflowService coordinates the asynchronous workflow lifecycle: it starts
// sessions, dispatches to the engine and commits callback results.
type WorkflowService struct {
	sessions   repository.SessionsRepository
	profiles   repository.ProfilesRepository
	posts      repository.PostsRepository
	configs    repository.WebhookConfigsRepository
	dispatcher WebhookDispatcher
	normalizer *LinkNormalizer
}

// NewWorkflowService creates a new instance of WorkflowService.
func NewWorkflowService(
	sessions repository.SessionsRepository,
	profiles repository.ProfilesRepository,
	posts repository.PostsRepository,
	configs repository.WebhookConfigsRepository,
	dispatcher WebhookDispatcher,
	normalizer *LinkNormalizer,
) *WorkflowService {
	if normalizer == nil {
		normalizer = NewLinkNormalizer()
	}
	return &WorkflowService{
		sessions:   sessions,
		profiles:   profiles,
		posts:      posts,
		configs:    configs,
		dispatcher: dispatcher,
		normalizer: normalizer,
	}
}

// TriggerBrandVoice starts a brand-voice analysis for the caller. The company
// profile is created or refreshed from the request before the session starts.
func (s *WorkflowService) TriggerBrandVoice(ctx context.Context, userID uuid.UUID, requestID string, req dto.BrandVoiceRequest) (*entity.WorkflowSession, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, ValidationError{Message: "companyName is required"}
	}

	cfg, err := s.activeConfig(ctx, entity.WorkflowBrandVoice)
	if err != nil {
		return nil, err
	}

	socials := req.SocialURLs
	if socials == nil {
		socials = map[string]string{}
	}
	if req.LinkedinCompanyURL != "" {
		socials["linkedin_company"] = req.LinkedinCompanyURL
	}
	if req.LinkedinPersonalURL != "" {
		socials["linkedin_personal"] = req.LinkedinPersonalURL
	}

	profile := &entity.CompanyProfile{
		UserID:      userID,
		CompanyName: strings.TrimSpace(req.CompanyName),
		SocialURLs:  s.normalizer.NormalizeSocialLinks(ctx, socials),
	}
	if req.Website != "" {
		website, err := s.normalizer.NormalizeWebsiteURL(req.Website)
		if err != nil {
			return nil, ValidationError{Message: "website is not a valid URL"}
		}
		profile.WebsiteURL = &website
	}

	stored, err := s.profiles.Upsert(ctx, profile)
	if err != nil {
		return nil, err
	}

	return s.startSession(ctx, userID, entity.WorkflowBrandVoice, cfg, &stored.ID, requestID, map[string]any{
		"company_name":       stored.CompanyName,
		"website_url":        stored.WebsiteURL,
		"social_urls":        stored.SocialURLs,
		"company_profile_id": stored.ID,
	})
}

// TriggerMascot starts mascot generation for the caller's existing profile.
func (s *WorkflowService) TriggerMascot(ctx context.Context, userID uuid.UUID, requestID string, req dto.MascotRequest) (*entity.WorkflowSession, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, ValidationError{Message: "description is required"}
	}

	cfg, err := s.activeConfig(ctx, entity.WorkflowMascot)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ValidationError{Message: "company profile is required before mascot generation"}
		}
		return nil, err
	}

	return s.startSession(ctx, userID, entity.WorkflowMascot, cfg, &profile.ID, requestID, map[string]any{
		"description":        req.Description,
		"image_url":          req.ImageURL,
		"company_name":       profile.CompanyName,
		"company_profile_id": profile.ID,
		"brand_voice":        profile.BrandVoiceAnalysis,
	})
}

// TriggerPostsCollection starts collection of the caller's historical posts.
func (s *WorkflowService) TriggerPostsCollection(ctx context.Context, userID uuid.UUID, requestID string, req dto.PostsCollectionRequest) (*entity.WorkflowSession, error) {
	if len(req.Platforms) == 0 {
		return nil, ValidationError{Message: "platforms is required"}
	}
	if strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		return nil, ValidationError{Message: "startDate and endDate are required"}
	}

	cfg, err := s.activeConfig(ctx, entity.WorkflowPostsCollection)
	if err != nil {
		return nil, err
	}

	var profileID *uuid.UUID
	payload := map[string]any{
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
		"platforms":  req.Platforms,
	}
	if req.LinkedinCompanyURL != "" {
		payload["linkedin_company_url"] = req.LinkedinCompanyURL
	}
	if profile, err := s.profiles.GetByUserID(ctx, userID); err == nil {
		profileID = &profile.ID
		payload["company_profile_id"] = profile.ID
		if profile.SocialURLs.LinkedInCompany != "" && req.LinkedinCompanyURL == "" {
			payload["linkedin_company_url"] = profile.SocialURLs.LinkedInCompany
		}
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, err
	}

	return s.startSession(ctx, userID, entity.WorkflowPostsCollection, cfg, profileID, requestID, payload)
}

// TriggerPostGeneration starts asynchronous generation of a single post.
func (s *WorkflowService) TriggerPostGeneration(ctx context.Context, userID uuid.UUID, requestID string, req dto.PostGenerationRequest) (*entity.WorkflowSession, error) {
	if len(req.Platforms) == 0 {
		return nil, ValidationError{Message: "platforms is required"}
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, ValidationError{Message: "topic is required"}
	}

	cfg, err := s.activeConfig(ctx, entity.WorkflowPostGeneration)
	if err != nil {
		return nil, err
	}

	var profileID *uuid.UUID
	payload := map[string]any{
		"platforms":           req.Platforms,
		"topic":               req.Topic,
		"keywords":            req.Keywords,
		"tone":                req.Tone,
		"length":              req.Length,
		"include_hashtags":    req.IncludeHashtags,
		"include_emojis":      req.IncludeEmojis,
		"custom_instructions": req.CustomInstructions,
	}
	if profile, err := s.profiles.GetByUserID(ctx, userID); err == nil {
		profileID = &profile.ID
		payload["company_profile_id"] = profile.ID
		payload["brand_voice"] = profile.BrandVoiceAnalysis
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, err
	}

	return s.startSession(ctx, userID, entity.WorkflowPostGeneration, cfg, profileID, requestID, payload)
}

// GetSession returns a session the caller owns.
func (s *WorkflowService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*entity.WorkflowSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

// LatestSession returns the caller's session for a workflow type.
func (s *WorkflowService) LatestSession(ctx context.Context, userID uuid.UUID, wt entity.WorkflowType) (*entity.WorkflowSession, error) {
	if !wt.Valid() {
		return nil, ValidationError{Message: fmt.Sprintf("unknown workflow type %q", wt)}
	}
	return s.sessions.LatestByUserAndType(ctx, userID, wt)
}

// Receive commits a callback from the workflow engine. The session id in the
// envelope is the sole resolution key; the rest of the body is remapped per
// the session's pinned configuration, decoded strictly for the workflow kind
// and applied together with the status transition in one transaction. A
// retried callback finds the session already terminal and changes nothing.
func (s *WorkflowService) Receive(ctx context.Context, kind entity.WorkflowType, body []byte) (*ReceiveOutcome, error) {
	var envelope dto.CallbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, ValidationError{Message: "invalid JSON payload"}
	}
	if strings.TrimSpace(envelope.SessionID) == "" {
		return nil, ValidationError{Message: "session_id is required"}
	}
	sessionID, err := uuid.Parse(envelope.SessionID)
	if err != nil {
		return nil, ValidationError{Message: "session_id is not a valid UUID"}
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// A callback for the wrong endpoint says nothing about whether the
	// session exists elsewhere.
	if session.WorkflowType != kind {
		return nil, repository.ErrSessionNotFound
	}

	cfg, err := s.configs.GetByID(ctx, session.WebhookConfigID)
	if err != nil {
		return nil, err
	}

	mapped, err := mapFields(body, cfg.FieldMappings)
	if err != nil {
		return nil, ValidationError{Message: "invalid JSON payload"}
	}

	outcome := &ReceiveOutcome{}
	status, errMessage, downstream, err := s.plan(kind, session, mapped, envelope.Status, outcome)
	if err != nil {
		return nil, err
	}

	stored, transitioned, err := s.sessions.Complete(ctx, session.ID, status, mapped, errMessage, downstream)
	if err != nil {
		return nil, err
	}

	outcome.Session = stored
	outcome.AlreadyProcessed = !transitioned
	if !transitioned {
		outcome.Profile = nil
		outcome.Post = nil
		outcome.PostsCollected = 0
	}
	return outcome, nil
}

// plan decodes the mapped payload for the workflow kind and builds the
// downstream write that runs inside the completion transaction.
func (s *WorkflowService) plan(kind entity.WorkflowType, session *entity.WorkflowSession, mapped json.RawMessage, envelopeStatus string, outcome *ReceiveOutcome) (entity.SessionStatus, *string, repository.DownstreamWrite, error) {
	failed := strings.EqualFold(envelopeStatus, string(entity.StatusError))

	switch kind {
	case entity.WorkflowBrandVoice:
		var result dto.BrandVoiceResult
		if err := decodeStrict(mapped, &result); err != nil {
			return "", nil, nil, ValidationError{Message: err.Error()}
		}
		if failed || result.ErrorMessage != "" {
			return entity.StatusError, failureMessage(result.ErrorMessage), nil, nil
		}
		if session.CompanyProfileID == nil {
			return "", nil, nil, fmt.Errorf("session %s has no company profile", session.ID)
		}
		profileID := *session.CompanyProfileID
		downstream := func(ctx context.Context, tx pgx.Tx, _ *entity.WorkflowSession) error {
			profile, err := s.profiles.ApplyBrandVoiceTx(ctx, tx, profileID, repository.BrandVoiceUpdate{
				BusinessOverview:     result.BusinessOverview,
				ValueProposition:     result.ValueProposition,
				IdealCustomerProfile: result.IdealCustomerProfile,
				Analysis:             mapped,
			})
			if err != nil {
				return err
			}
			outcome.Profile = profile
			return nil
		}
		return entity.StatusCompleted, nil, downstream, nil

	case entity.WorkflowMascot:
		var result dto.MascotResult
		if err := decodeStrict(mapped, &result); err != nil {
			return "", nil, nil, ValidationError{Message: err.Error()}
		}
		if failed || result.ErrorMessage != "" {
			return entity.StatusError, failureMessage(result.ErrorMessage), nil, nil
		}
		if result.ImageURL == "" {
			return "", nil, nil, ValidationError{Message: "image_url is required"}
		}
		if session.CompanyProfileID == nil {
			return "", nil, nil, fmt.Errorf("session %s has no company profile", session.ID)
		}
		profileID := *session.CompanyProfileID
		downstream := func(ctx context.Context, tx pgx.Tx, _ *entity.WorkflowSession) error {
			profile, err := s.profiles.SetMascotDataTx(ctx, tx, profileID, mapped)
			if err != nil {
				return err
			}
			outcome.Profile = profile
			return nil
		}
		return entity.StatusCompleted, nil, downstream, nil

	case entity.WorkflowPostsCollection:
		var result dto.PostsCollectionResult
		if err := decodeStrict(mapped, &result); err != nil {
			return "", nil, nil, ValidationError{Message: err.Error()}
		}
		if failed || result.ErrorMessage != "" {
			return entity.StatusError, failureMessage(result.ErrorMessage), nil, nil
		}
		userID := session.UserID
		downstream := func(ctx context.Context, tx pgx.Tx, _ *entity.WorkflowSession) error {
			posts := make([]entity.Post, 0, len(result.Posts))
			for _, collected := range result.Posts {
				if collected.Content == "" || collected.Platform == "" {
					continue
				}
				post := entity.Post{
					UserID:          userID,
					Platform:        collected.Platform,
					Content:         collected.Content,
					Status:          entity.PostStatusPublished,
					EngagementStats: collected.EngagementStats,
				}
				if collected.Title != "" {
					title := collected.Title
					post.Title = &title
				}
				if collected.Thumbnail != "" {
					thumbnail := collected.Thumbnail
					post.ImageURL = &thumbnail
				}
				posts = append(posts, post)
			}
			inserted, err := s.posts.InsertCollectedTx(ctx, tx, posts)
			if err != nil {
				return err
			}
			outcome.PostsCollected = inserted
			return nil
		}
		return entity.StatusCompleted, nil, downstream, nil

	case entity.WorkflowPostGeneration:
		var result dto.GeneratedPostResult
		if err := decodeStrict(mapped, &result); err != nil {
			return "", nil, nil, ValidationError{Message: err.Error()}
		}
		if failed || result.ErrorMessage != "" {
			return entity.StatusError, failureMessage(result.ErrorMessage), nil, nil
		}
		if result.Content == "" {
			return "", nil, nil, ValidationError{Message: "content is required"}
		}
		userID := session.UserID
		sessionID := session.ID
		downstream := func(ctx context.Context, tx pgx.Tx, _ *entity.WorkflowSession) error {
			post := &entity.Post{
				UserID:    userID,
				SessionID: &sessionID,
				Platform:  result.Platform,
				Content:   result.Content,
				Hashtags:  result.Hashtags,
				Status:    entity.PostStatusDraft,
			}
			if result.Title != "" {
				title := result.Title
				post.Title = &title
			}
			if result.ImageURL != "" {
				imageURL := result.ImageURL
				post.ImageURL = &imageURL
			}
			stored, _, err := s.posts.InsertGeneratedTx(ctx, tx, post)
			if err != nil {
				return err
			}
			outcome.Post = stored
			return nil
		}
		return entity.StatusCompleted, nil, downstream, nil
	}

	return "", nil, nil, ValidationError{Message: fmt.Sprintf("unknown workflow type %q", kind)}
}

func (s *WorkflowService) activeConfig(ctx context.Context, wt entity.WorkflowType) (*entity.WebhookConfiguration, error) {
	cfg, err := s.configs.ActiveByType(ctx, wt)
	if err != nil {
		if errors.Is(err, repository.ErrWebhookConfigNotFound) {
			return nil, fmt.Errorf("%w for %s", ErrWorkflowNotConfigured, wt)
		}
		return nil, err
	}
	return cfg, nil
}

// startSession upserts the processing session pinned to the resolved config
// version and dispatches the trigger payload. Dispatch failure moves the
// session straight to error.
func (s *WorkflowService) startSession(ctx context.Context, userID uuid.UUID, wt entity.WorkflowType, cfg *entity.WebhookConfiguration, profileID *uuid.UUID, requestID string, data map[string]any) (*entity.WorkflowSession, error) {
	sessionData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal session data: %w", err)
	}

	session, err := s.sessions.UpsertProcessing(ctx, &entity.WorkflowSession{
		UserID:           userID,
		WorkflowType:     wt,
		CompanyProfileID: profileID,
		WebhookConfigID:  cfg.ID,
		SessionData:      sessionData,
	})
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"session_id":        session.ID,
		"user_id":           userID,
		"workflow_type":     wt,
		"callback_endpoint": cfg.InboundEndpoint,
		"data":              data,
	}
	if err := s.dispatcher.Dispatch(ctx, cfg.OutboundWebhookURL, payload, requestID); err != nil {
		message := fmt.Sprintf("failed to dispatch workflow: %v", err)
		if markErr := s.sessions.MarkError(ctx, session.ID, message); markErr != nil {
			return nil, fmt.Errorf("%w: %v (mark error: %v)", ErrDispatchFailed, err, markErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return session, nil
}

// envelopeFields identify the session and caller, not the result. Engines
// echo them back alongside the payload; they are never mapped or decoded.
var envelopeFields = []string{
	"session_id",
	"status",
	"execution_id",
	"user_id",
	"company_profile_id",
	"workflow_type",
}

// mapFields renames top-level keys of the raw callback body per the pinned
// configuration (external name to internal name) and strips the envelope
// fields, leaving only the result payload.
func mapFields(body []byte, mappings map[string]string) (json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	for _, key := range envelopeFields {
		delete(raw, key)
	}

	// Analysis engines wrap their output in an analysis_result object. Hoist
	// its members so the mapping table and the typed decode see flat keys.
	if wrapped, ok := raw["analysis_result"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(wrapped, &nested); err == nil {
			delete(raw, "analysis_result")
			for key, value := range nested {
				if _, exists := raw[key]; !exists {
					raw[key] = value
				}
			}
		}
	}

	out := make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		if internal, ok := mappings[key]; ok && internal != "" {
			out[internal] = value
			continue
		}
		out[key] = value
	}
	return json.Marshal(out)
}

// decodeStrict rejects payload fields that survive mapping but are not part
// of the expected result shape.
func decodeStrict(data json.RawMessage, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("unexpected result payload: %w", err)
	}
	return nil
}

func failureMessage(message string) *string {
	if message == "" {
		message = "workflow reported failure"
	}
	return &message
}
