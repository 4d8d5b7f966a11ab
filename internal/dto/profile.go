package dto

// UpdateProfileRequest captures user edits to their company profile.
type UpdateProfileRequest struct {
	CompanyName          *string           `json:"company_name,omitempty"`
	Website              *string           `json:"website,omitempty"`
	SocialURLs           map[string]string `json:"social_urls,omitempty"`
	BusinessOverview     *string           `json:"business_overview,omitempty"`
	ValueProposition     *string           `json:"value_proposition,omitempty"`
	IdealCustomerProfile *string           `json:"ideal_customer_profile,omitempty"`
}
