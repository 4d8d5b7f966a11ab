package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/entity"
	"github.com/brandforge/content-engine/api/internal/repository"
)

// ErrInvalidAPIKey covers every authentication failure on the receiver
// surface: unknown secret, deactivated key, or a key scoped to a different
// workflow. Callers must not tell these apart.
var ErrInvalidAPIKey = errors.New("invalid API key")

const apiKeyPrefix = "sk_"

// APIKeysService manages the credentials presented by the workflow engine.
type APIKeysService struct {
	repo repository.APIKeysRepository
}

// NewAPIKeysService creates a new instance of APIKeysService.
func NewAPIKeysService(repo repository.APIKeysRepository) *APIKeysService {
	return &APIKeysService{repo: repo}
}

// Authenticate resolves the presented secret and checks it is scoped to the
// workflow type of the endpoint being called. The last-used timestamp update
// is best effort and never fails the request.
func (s *APIKeysService) Authenticate(ctx context.Context, secret string, wt entity.WorkflowType) (*entity.APIKey, error) {
	key, err := s.repo.FindActiveByKey(ctx, secret)
	if err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}
	if key.WorkflowType != wt || !key.Permissions.Write {
		return nil, ErrInvalidAPIKey
	}

	// Off the request path: the touch must never add latency to, or fail,
	// the callback. Detached from the request context so it survives the
	// response being written.
	go func(ctx context.Context, id uuid.UUID) {
		if err := s.repo.TouchLastUsed(ctx, id); err != nil {
			log.Printf("level=warn msg=\"touch api key failed\" key_id=%s error=%q", id, err)
		}
	}(context.WithoutCancel(ctx), key.ID)

	return key, nil
}

// CreateKey provisions a credential for one workflow type and returns the
// secret. The secret is shown exactly once at creation; losing it means
// provisioning a new key.
func (s *APIKeysService) CreateKey(ctx context.Context, req dto.CreateAPIKeyRequest) (*entity.APIKey, string, error) {
	name := strings.TrimSpace(req.KeyName)
	if name == "" {
		return nil, "", ValidationError{Message: "key_name is required"}
	}
	wt := entity.WorkflowType(req.WorkflowType)
	if !wt.Valid() {
		return nil, "", ValidationError{Message: fmt.Sprintf("unknown workflow type %q", req.WorkflowType)}
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, "", fmt.Errorf("generate api key: %w", err)
	}

	key, err := s.repo.Create(ctx, &entity.APIKey{
		KeyName:      name,
		Key:          secret,
		WorkflowType: wt,
		Permissions: entity.APIKeyPermissions{
			Read:  true,
			Write: req.Write,
		},
	})
	if err != nil {
		return nil, "", err
	}
	return key, secret, nil
}

// ListKeys returns all credentials without their secrets.
func (s *APIKeysService) ListKeys(ctx context.Context) ([]entity.APIKey, error) {
	return s.repo.List(ctx)
}

// ToggleKey flips a credential's active flag.
func (s *APIKeysService) ToggleKey(ctx context.Context, id uuid.UUID, active bool) (*entity.APIKey, error) {
	return s.repo.SetActive(ctx, id, active)
}

// generateSecret produces an sk_-prefixed secret with 48 characters of
// entropy from crypto/rand.
func generateSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}
