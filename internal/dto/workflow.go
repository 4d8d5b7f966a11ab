package dto

import "github.com/google/uuid"

// BrandVoiceRequest starts a brand-voice analysis workflow.
type BrandVoiceRequest struct {
	CompanyName         string            `json:"companyName"`
	Website             string            `json:"website,omitempty"`
	LinkedinCompanyURL  string            `json:"linkedinCompanyUrl,omitempty"`
	LinkedinPersonalURL string            `json:"linkedinPersonalUrl,omitempty"`
	SocialURLs          map[string]string `json:"socialUrls,omitempty"`
}

// MascotRequest starts a mascot generation workflow for the caller's
// existing company profile.
type MascotRequest struct {
	ImageURL    string `json:"imageUrl,omitempty"`
	Description string `json:"description"`
}

// PostsCollectionRequest starts collection of historical posts from the
// user's social accounts.
type PostsCollectionRequest struct {
	StartDate          string   `json:"startDate"`
	EndDate            string   `json:"endDate"`
	Platforms          []string `json:"platforms"`
	LinkedinCompanyURL string   `json:"linkedinCompanyUrl,omitempty"`
}

// PostGenerationRequest describes the content the user wants generated. It is
// shared by the asynchronous workflow trigger and the synchronous generator.
type PostGenerationRequest struct {
	Platforms          []string `json:"platforms"`
	Topic              string   `json:"topic"`
	Keywords           []string `json:"keywords,omitempty"`
	Tone               string   `json:"tone,omitempty"`
	Length             string   `json:"length,omitempty"`
	IncludeHashtags    bool     `json:"includeHashtags,omitempty"`
	IncludeEmojis      bool     `json:"includeEmojis,omitempty"`
	CustomInstructions string   `json:"customInstructions,omitempty"`
}

// TriggerResponse acknowledges that a workflow was started. The caller is
// expected to poll the session until it reaches a terminal status.
type TriggerResponse struct {
	Success   bool      `json:"success"`
	SessionID uuid.UUID `json:"sessionId"`
	Message   string    `json:"message"`
}
