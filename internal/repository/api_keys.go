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

// ErrAPIKeyNotFound indicates no active key matched the presented secret.
var ErrAPIKeyNotFound = errors.New("api key not found")

// APIKeysRepository describes persistence for receiver credentials.
type APIKeysRepository interface {
	FindActiveByKey(ctx context.Context, key string) (*entity.APIKey, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]entity.APIKey, error)
	Create(ctx context.Context, apiKey *entity.APIKey) (*entity.APIKey, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.APIKey, error)
}

// PGXAPIKeysRepository implements APIKeysRepository using pgx.
type PGXAPIKeysRepository struct {
	pool pgxPool
}

// NewPGXAPIKeysRepository wires a pgx backed repository.
func NewPGXAPIKeysRepository(pool *pgxpool.Pool) *PGXAPIKeysRepository {
	return &PGXAPIKeysRepository{pool: pool}
}

const apiKeyColumns = `id, key_name, api_key, workflow_type, permissions, is_active, last_used_at, created_at, updated_at`

// FindActiveByKey resolves an active credential by its secret. Inactive or
// unknown keys both surface ErrAPIKeyNotFound; callers must not distinguish
// them in responses.
func (r *PGXAPIKeysRepository) FindActiveByKey(ctx context.Context, key string) (*entity.APIKey, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE api_key = $1 AND is_active = TRUE`, key)
	apiKey, err := scanAPIKey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("query api key: %w", err)
	}
	return apiKey, nil
}

// TouchLastUsed records a successful authentication.
func (r *PGXAPIKeysRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}

// List returns all keys, newest first.
func (r *PGXAPIKeysRepository) List(ctx context.Context) ([]entity.APIKey, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []entity.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key row: %w", err)
		}
		keys = append(keys, *key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api keys: %w", err)
	}
	return keys, nil
}

// Create stores a newly generated credential.
func (r *PGXAPIKeysRepository) Create(ctx context.Context, apiKey *entity.APIKey) (*entity.APIKey, error) {
	if apiKey == nil {
		return nil, fmt.Errorf("api key payload is nil")
	}

	permissions, err := json.Marshal(apiKey.Permissions)
	if err != nil {
		return nil, fmt.Errorf("marshal permissions: %w", err)
	}

	query := `
        INSERT INTO api_keys (key_name, api_key, workflow_type, permissions, is_active, updated_at)
        VALUES ($1, $2, $3, $4, TRUE, NOW())
        RETURNING ` + apiKeyColumns

	stored, err := scanAPIKey(r.pool.QueryRow(ctx, query, apiKey.KeyName, apiKey.Key, apiKey.WorkflowType, permissions))
	if err != nil {
		return nil, fmt.Errorf("insert api key: %w", err)
	}
	return stored, nil
}

// SetActive toggles a credential. Keys are deactivated to revoke, never
// deleted.
func (r *PGXAPIKeysRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.APIKey, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE api_keys
        SET is_active = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING `+apiKeyColumns, id, active)

	key, err := scanAPIKey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("toggle api key: %w", err)
	}
	return key, nil
}

func scanAPIKey(row pgx.Row) (*entity.APIKey, error) {
	var (
		key         entity.APIKey
		permissions []byte
	)
	err := row.Scan(
		&key.ID,
		&key.KeyName,
		&key.Key,
		&key.WorkflowType,
		&permissions,
		&key.IsActive,
		&key.LastUsedAt,
		&key.CreatedAt,
		&key.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(permissions) > 0 {
		if err := json.Unmarshal(permissions, &key.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions: %w", err)
		}
	}
	return &key, nil
}
