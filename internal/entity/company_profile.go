package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SocialLinks stores the canonical URL for each supported network.
type SocialLinks struct {
	LinkedInCompany  string `json:"linkedin_company,omitempty"`
	LinkedInPersonal string `json:"linkedin_personal,omitempty"`
	Facebook         string `json:"facebook,omitempty"`
	Instagram        string `json:"instagram,omitempty"`
	Youtube          string `json:"youtube,omitempty"`
	Tiktok           string `json:"tiktok,omitempty"`
}

// CompanyProfile holds the brand material for one user. The narrative fields
// are written by the brand-voice receiver; mascot fields by the mascot
// receiver. One profile per user.
type CompanyProfile struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               uuid.UUID       `json:"user_id"`
	CompanyName          string          `json:"company_name"`
	WebsiteURL           *string         `json:"website_url,omitempty"`
	SocialURLs           SocialLinks     `json:"social_urls"`
	BusinessOverview     *string         `json:"business_overview,omitempty"`
	ValueProposition     *string         `json:"value_proposition,omitempty"`
	IdealCustomerProfile *string         `json:"ideal_customer_profile,omitempty"`
	BrandVoiceAnalysis   json.RawMessage `json:"brand_voice_analysis,omitempty"`
	MascotData           json.RawMessage `json:"mascot_data,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
