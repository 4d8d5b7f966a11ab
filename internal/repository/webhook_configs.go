package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandforge/content-engine/api/internal/entity"
)

// ErrWebhookConfigNotFound indicates no configuration exists for the
// requested workflow type (or none is active).
var ErrWebhookConfigNotFound = errors.New("webhook configuration not found")

// WebhookConfigsRepository describes the append-only configuration registry.
// Versions are immutable; CreateVersion appends, SetActive toggles a version's
// flag, and ActiveByType resolves the newest active version.
type WebhookConfigsRepository interface {
	ActiveByType(ctx context.Context, wt entity.WorkflowType) (*entity.WebhookConfiguration, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WebhookConfiguration, error)
	List(ctx context.Context) ([]entity.WebhookConfiguration, error)
	CreateVersion(ctx context.Context, cfg *entity.WebhookConfiguration) (*entity.WebhookConfiguration, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.WebhookConfiguration, error)
}

// PGXWebhookConfigsRepository implements WebhookConfigsRepository using pgx.
type PGXWebhookConfigsRepository struct {
	pool pgxPool
}

// NewPGXWebhookConfigsRepository wires a pgx backed repository.
func NewPGXWebhookConfigsRepository(pool *pgxpool.Pool) *PGXWebhookConfigsRepository {
	return &PGXWebhookConfigsRepository{pool: pool}
}

const webhookConfigColumns = `id, workflow_type, version, inbound_endpoint, outbound_webhook_url, field_mappings, expected_payload, documentation, is_active, created_at, updated_at`

// ActiveByType returns the newest active configuration version for a
// workflow type.
func (r *PGXWebhookConfigsRepository) ActiveByType(ctx context.Context, wt entity.WorkflowType) (*entity.WebhookConfiguration, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+webhookConfigColumns+`
        FROM webhook_configurations
        WHERE workflow_type = $1 AND is_active = TRUE
        ORDER BY version DESC
        LIMIT 1
    `, wt)

	cfg, err := scanWebhookConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWebhookConfigNotFound
		}
		return nil, fmt.Errorf("query active webhook config: %w", err)
	}
	return cfg, nil
}

// GetByID fetches a configuration snapshot by identifier. Receivers use this
// to read the version a session was pinned to at trigger time.
func (r *PGXWebhookConfigsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WebhookConfiguration, error) {
	cfg, err := scanWebhookConfig(r.pool.QueryRow(ctx, `SELECT `+webhookConfigColumns+` FROM webhook_configurations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWebhookConfigNotFound
		}
		return nil, fmt.Errorf("query webhook config: %w", err)
	}
	return cfg, nil
}

// List returns all configuration versions, newest first.
func (r *PGXWebhookConfigsRepository) List(ctx context.Context) ([]entity.WebhookConfiguration, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+webhookConfigColumns+` FROM webhook_configurations ORDER BY workflow_type, version DESC`)
	if err != nil {
		return nil, fmt.Errorf("list webhook configs: %w", err)
	}
	defer rows.Close()

	var configs []entity.WebhookConfiguration
	for rows.Next() {
		cfg, err := scanWebhookConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook config row: %w", err)
		}
		configs = append(configs, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook configs: %w", err)
	}
	return configs, nil
}

// CreateVersion appends the next version for the workflow type and marks it
// active; nothing is edited in place.
func (r *PGXWebhookConfigsRepository) CreateVersion(ctx context.Context, cfg *entity.WebhookConfiguration) (*entity.WebhookConfiguration, error) {
	if cfg == nil {
		return nil, fmt.Errorf("webhook config payload is nil")
	}

	mappings := cfg.FieldMappings
	if mappings == nil {
		mappings = map[string]string{}
	}
	mappingsJSON, err := json.Marshal(mappings)
	if err != nil {
		return nil, fmt.Errorf("marshal field mappings: %w", err)
	}

	expected := cfg.ExpectedPayload
	if len(expected) == 0 {
		expected = json.RawMessage("{}")
	}

	query := `
        INSERT INTO webhook_configurations (
            workflow_type, version, inbound_endpoint, outbound_webhook_url,
            field_mappings, expected_payload, documentation, is_active, updated_at
        )
        SELECT $1, COALESCE(MAX(version), 0) + 1, $2, $3, $4, $5, $6, TRUE, NOW()
        FROM webhook_configurations WHERE workflow_type = $1
        RETURNING ` + webhookConfigColumns

	stored, err := scanWebhookConfig(r.pool.QueryRow(ctx, query,
		cfg.WorkflowType, cfg.InboundEndpoint, cfg.OutboundWebhookURL,
		mappingsJSON, expected, cfg.Documentation,
	))
	if err != nil {
		return nil, fmt.Errorf("create webhook config version: %w", err)
	}
	return stored, nil
}

// SetActive toggles one version's active flag.
func (r *PGXWebhookConfigsRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.WebhookConfiguration, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE webhook_configurations
        SET is_active = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING `+webhookConfigColumns, id, active)

	cfg, err := scanWebhookConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWebhookConfigNotFound
		}
		return nil, fmt.Errorf("toggle webhook config: %w", err)
	}
	return cfg, nil
}

func scanWebhookConfig(row pgx.Row) (*entity.WebhookConfiguration, error) {
	var (
		cfg      entity.WebhookConfiguration
		mappings []byte
	)
	err := row.Scan(
		&cfg.ID,
		&cfg.WorkflowType,
		&cfg.Version,
		&cfg.InboundEndpoint,
		&cfg.OutboundWebhookURL,
		&mappings,
		&cfg.ExpectedPayload,
		&cfg.Documentation,
		&cfg.IsActive,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(mappings) > 0 {
		if err := json.Unmarshal(mappings, &cfg.FieldMappings); err != nil {
			return nil, fmt.Errorf("decode field mappings: %w", err)
		}
	}
	return &cfg, nil
}
