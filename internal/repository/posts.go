package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/entity"
)

// ErrPostNotFound indicates no post matched the lookup criteria.
var ErrPostNotFound = errors.New("post not found")

// PostsRepository describes persistence operations for posts.
type PostsRepository interface {
	Insert(ctx context.Context, post *entity.Post) (*entity.Post, error)
	InsertGeneratedTx(ctx context.Context, tx pgx.Tx, post *entity.Post) (*entity.Post, bool, error)
	InsertCollectedTx(ctx context.Context, tx pgx.Tx, posts []entity.Post) (int, error)
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*entity.Post, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter dto.PostListFilter) ([]entity.Post, error)
	Update(ctx context.Context, id, userID uuid.UUID, patch dto.UpdatePostRequest) (*entity.Post, error)
}

// PGXPostsRepository implements PostsRepository using pgx.
type PGXPostsRepository struct {
	pool pgxPool
}

// NewPGXPostsRepository wires a pgx backed repository.
func NewPGXPostsRepository(pool *pgxpool.Pool) *PGXPostsRepository {
	return &PGXPostsRepository{pool: pool}
}

const postColumns = `id, user_id, session_id, platform, title, content, hashtags, image_url, status, ai_generated, engagement_stats, created_at, updated_at`

// Insert stores a post created by the synchronous generator.
func (r *PGXPostsRepository) Insert(ctx context.Context, post *entity.Post) (*entity.Post, error) {
	if post == nil {
		return nil, fmt.Errorf("post payload is nil")
	}

	query := `
        INSERT INTO posts (user_id, session_id, platform, title, content, hashtags, image_url, status, ai_generated, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        RETURNING ` + postColumns

	stored, err := scanPost(r.pool.QueryRow(ctx, query,
		post.UserID, post.SessionID, post.Platform, post.Title, post.Content,
		post.Hashtags, post.ImageURL, post.Status, post.AIGenerated,
	))
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return stored, nil
}

// InsertGeneratedTx inserts a workflow-generated post inside the completion
// transaction. The unique index on session_id turns a retried callback into a
// no-op; inserted=false means the post already existed.
func (r *PGXPostsRepository) InsertGeneratedTx(ctx context.Context, tx pgx.Tx, post *entity.Post) (*entity.Post, bool, error) {
	if post == nil || post.SessionID == nil {
		return nil, false, fmt.Errorf("generated post requires a session id")
	}

	query := `
        INSERT INTO posts (user_id, session_id, platform, title, content, hashtags, image_url, status, ai_generated, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, NOW())
        ON CONFLICT (session_id) DO NOTHING
        RETURNING ` + postColumns

	stored, err := scanPost(tx.QueryRow(ctx, query,
		post.UserID, post.SessionID, post.Platform, post.Title, post.Content,
		post.Hashtags, post.ImageURL, post.Status,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("insert generated post: %w", err)
	}

	// Conflict path: return the existing row.
	existing, err := scanPost(tx.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE session_id = $1`, *post.SessionID))
	if err != nil {
		return nil, false, fmt.Errorf("load existing generated post: %w", err)
	}
	return existing, false, nil
}

// InsertCollectedTx stores historical posts gathered by the collection
// workflow inside the completion transaction. Idempotency comes from the
// guarded session transition, not from this insert, so rows carry no
// session id.
func (r *PGXPostsRepository) InsertCollectedTx(ctx context.Context, tx pgx.Tx, posts []entity.Post) (int, error) {
	inserted := 0
	for i := range posts {
		post := &posts[i]
		_, err := tx.Exec(ctx, `
            INSERT INTO posts (user_id, platform, title, content, hashtags, image_url, status, ai_generated, engagement_stats, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, NOW())
        `, post.UserID, post.Platform, post.Title, post.Content, post.Hashtags, post.ImageURL, post.Status, post.EngagementStats)
		if err != nil {
			return inserted, fmt.Errorf("insert collected post: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

// GetBySessionID returns the post created by a workflow session, if any.
func (r *PGXPostsRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*entity.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE session_id = $1`, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("query post by session: %w", err)
	}
	return post, nil
}

// ListByUser returns the caller's posts, newest first.
func (r *PGXPostsRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter dto.PostListFilter) ([]entity.Post, error) {
	var (
		clauses = []string{"user_id = $1"}
		args    = []any{userID}
		idx     = 2
	)

	if filter.Platform != "" {
		clauses = append(clauses, fmt.Sprintf("platform = $%d", idx))
		args = append(args, filter.Platform)
		idx++
	}
	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		postColumns, strings.Join(clauses, " AND "), idx, idx+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []entity.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// Update patches a post owned by the user.
func (r *PGXPostsRepository) Update(ctx context.Context, id, userID uuid.UUID, patch dto.UpdatePostRequest) (*entity.Post, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Hashtags != nil {
		add("hashtags", patch.Hashtags)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}

	if len(setClauses) == 0 {
		post, err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1 AND user_id = $2`, id, userID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrPostNotFound
			}
			return nil, fmt.Errorf("query post: %w", err)
		}
		return post, nil
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id, userID)

	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), idx, idx+1, postColumns)

	post, err := scanPost(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	var post entity.Post
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.SessionID,
		&post.Platform,
		&post.Title,
		&post.Content,
		&post.Hashtags,
		&post.ImageURL,
		&post.Status,
		&post.AIGenerated,
		&post.EngagementStats,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
