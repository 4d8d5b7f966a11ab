package dto

import "encoding/json"

// CallbackEnvelope carries the fields every receiver callback must include.
// session_id is the sole resolution key and is never subject to field
// mapping; the result payload is mapped per the session's pinned
// configuration before being decoded into one of the typed results below.
type CallbackEnvelope struct {
	SessionID   string `json:"session_id"`
	Status      string `json:"status,omitempty"`
	ExecutionID string `json:"execution_id,omitempty"`
}

// BrandVoiceResult is the analysis produced by the brand-voice workflow.
type BrandVoiceResult struct {
	BusinessOverview     string `json:"business_overview"`
	ValueProposition     string `json:"value_proposition"`
	IdealCustomerProfile string `json:"ideal_customer_profile"`
	VoiceTone            string `json:"voice_tone,omitempty"`
	BrandGuidelines      string `json:"brand_guidelines,omitempty"`
	ErrorMessage         string `json:"error_message,omitempty"`
}

// MascotResult is produced by the mascot generation workflow.
type MascotResult struct {
	ImageURL     string   `json:"image_url"`
	Personality  string   `json:"personality,omitempty"`
	Style        string   `json:"style,omitempty"`
	Colors       []string `json:"colors,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// CollectedPost is one historical post returned by the posts-collection
// workflow.
type CollectedPost struct {
	Title           string          `json:"title,omitempty"`
	Content         string          `json:"content"`
	Platform        string          `json:"platform"`
	Thumbnail       string          `json:"thumbnail,omitempty"`
	PostDate        string          `json:"post_date,omitempty"`
	Author          string          `json:"author,omitempty"`
	ExternalLink    string          `json:"external_link,omitempty"`
	EngagementStats json.RawMessage `json:"engagement_stats,omitempty"`
}

// PostsCollectionResult wraps the posts returned by the collection workflow.
type PostsCollectionResult struct {
	Posts        []CollectedPost `json:"posts"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// GeneratedPostResult is one post produced by the post-generation workflow.
type GeneratedPostResult struct {
	Platform     string   `json:"platform"`
	Title        string   `json:"title,omitempty"`
	Content      string   `json:"content"`
	Hashtags     []string `json:"hashtags,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}
