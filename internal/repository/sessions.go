package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandforge/content-engine/api/internal/entity"
)

// ErrSessionNotFound indicates there is no workflow session for the lookup key.
var ErrSessionNotFound = errors.New("workflow session not found")

// DownstreamWrite runs inside the completion transaction after the session has
// been moved to a terminal state. If it fails the whole completion rolls back.
type DownstreamWrite func(ctx context.Context, tx pgx.Tx, session *entity.WorkflowSession) error

// SessionsRepository describes persistence for workflow sessions.
type SessionsRepository interface {
	UpsertProcessing(ctx context.Context, session *entity.WorkflowSession) (*entity.WorkflowSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WorkflowSession, error)
	LatestByUserAndType(ctx context.Context, userID uuid.UUID, wt entity.WorkflowType) (*entity.WorkflowSession, error)
	MarkError(ctx context.Context, id uuid.UUID, message string) error
	Complete(ctx context.Context, id uuid.UUID, status entity.SessionStatus, data json.RawMessage, errMessage *string, downstream DownstreamWrite) (*entity.WorkflowSession, bool, error)
	ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// PGXSessionsRepository implements SessionsRepository using pgx.
type PGXSessionsRepository struct {
	pool pgxPool
}

// NewPGXSessionsRepository wires a pgx backed repository.
func NewPGXSessionsRepository(pool *pgxpool.Pool) *PGXSessionsRepository {
	return &PGXSessionsRepository{pool: pool}
}

const sessionColumns = `id, user_id, workflow_type, company_profile_id, webhook_config_id, status, session_data, error_message, created_at, updated_at, completed_at`

// UpsertProcessing creates or supersedes the session for the caller's
// (user, workflow type) key and resets it to processing. The unique
// constraint guarantees at most one in-flight session per key even under
// concurrent triggers.
func (r *PGXSessionsRepository) UpsertProcessing(ctx context.Context, session *entity.WorkflowSession) (*entity.WorkflowSession, error) {
	if session == nil {
		return nil, fmt.Errorf("session payload is nil")
	}

	data := session.SessionData
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	query := `
        INSERT INTO workflow_sessions (
            user_id, workflow_type, company_profile_id, webhook_config_id, status, session_data, updated_at
        ) VALUES ($1, $2, $3, $4, 'processing', $5, NOW())
        ON CONFLICT (user_id, workflow_type) DO UPDATE SET
            company_profile_id = EXCLUDED.company_profile_id,
            webhook_config_id = EXCLUDED.webhook_config_id,
            status = 'processing',
            session_data = EXCLUDED.session_data,
            error_message = NULL,
            completed_at = NULL,
            updated_at = NOW()
        RETURNING ` + sessionColumns

	row := r.pool.QueryRow(ctx, query,
		session.UserID,
		session.WorkflowType,
		session.CompanyProfileID,
		session.WebhookConfigID,
		data,
	)

	stored, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("upsert workflow session: %w", err)
	}
	return stored, nil
}

// GetByID fetches a session by identifier.
func (r *PGXSessionsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WorkflowSession, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM workflow_sessions WHERE id = $1`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query workflow session: %w", err)
	}
	return session, nil
}

// LatestByUserAndType returns the caller's session for a workflow type.
func (r *PGXSessionsRepository) LatestByUserAndType(ctx context.Context, userID uuid.UUID, wt entity.WorkflowType) (*entity.WorkflowSession, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM workflow_sessions WHERE user_id = $1 AND workflow_type = $2`, userID, wt)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query latest workflow session: %w", err)
	}
	return session, nil
}

// MarkError moves a session to error with the given message. Used when the
// outbound dispatch fails so nothing is left stuck in processing.
func (r *PGXSessionsRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE workflow_sessions
        SET status = 'error', error_message = $2, completed_at = NOW(), updated_at = NOW()
        WHERE id = $1
    `, id, message)
	if err != nil {
		return fmt.Errorf("mark workflow session error: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Complete transitions the session from processing to a terminal state and
// runs the downstream write inside the same transaction. The guarded update
// makes delivery idempotent: a session already in a terminal state is returned
// unchanged with transitioned=false and the downstream write is skipped.
func (r *PGXSessionsRepository) Complete(ctx context.Context, id uuid.UUID, status entity.SessionStatus, data json.RawMessage, errMessage *string, downstream DownstreamWrite) (*entity.WorkflowSession, bool, error) {
	if !status.Terminal() {
		return nil, false, fmt.Errorf("completion status must be terminal, got %q", status)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("start completion tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE workflow_sessions
        SET status = $2,
            session_data = COALESCE($3, session_data),
            error_message = $4,
            completed_at = NOW(),
            updated_at = NOW()
        WHERE id = $1 AND status = 'processing'
        RETURNING ` + sessionColumns

	var dataArg any
	if len(data) > 0 {
		dataArg = data
	}

	session, err := scanSession(tx.QueryRow(ctx, query, id, status, dataArg, errMessage))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, fmt.Errorf("complete workflow session: %w", err)
		}
		// Not in processing: distinguish missing from already terminal.
		existing, getErr := r.getByIDTx(ctx, tx, id)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}

	if downstream != nil {
		if err := downstream(ctx, tx, session); err != nil {
			return nil, false, fmt.Errorf("downstream write for session %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit completion tx: %w", err)
	}
	return session, true, nil
}

// ExpireStale marks processing sessions older than the cutoff as errored.
func (r *PGXSessionsRepository) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE workflow_sessions
        SET status = 'error', error_message = 'workflow timed out', completed_at = NOW(), updated_at = NOW()
        WHERE status = 'processing' AND updated_at < NOW() - $1::interval
    `, fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("expire stale sessions: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *PGXSessionsRepository) getByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entity.WorkflowSession, error) {
	session, err := scanSession(tx.QueryRow(ctx, `SELECT `+sessionColumns+` FROM workflow_sessions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query workflow session: %w", err)
	}
	return session, nil
}

func scanSession(row pgx.Row) (*entity.WorkflowSession, error) {
	var session entity.WorkflowSession
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.WorkflowType,
		&session.CompanyProfileID,
		&session.WebhookConfigID,
		&session.Status,
		&session.SessionData,
		&session.ErrorMessage,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
