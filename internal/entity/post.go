package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)

// Post is a social-media post owned by a user. AI-generated posts created by
// the post-generation receiver carry the originating session id; the unique
// constraint on that column is what makes retried callbacks idempotent.
type Post struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	SessionID       *uuid.UUID      `json:"session_id,omitempty"`
	Platform        string          `json:"platform"`
	Title           *string         `json:"title,omitempty"`
	Content         string          `json:"content"`
	Hashtags        []string        `json:"hashtags,omitempty"`
	ImageURL        *string         `json:"image_url,omitempty"`
	Status          string          `json:"status"`
	AIGenerated     bool            `json:"ai_generated"`
	EngagementStats json.RawMessage `json:"engagement_stats,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
