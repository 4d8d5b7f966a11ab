package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/entity"
	"github.com/brandforge/content-engine/api/internal/repository"
)

// ProfilesService exposes read/write operations for company profiles.
type ProfilesService struct {
	repo       repository.ProfilesRepository
	normalizer *LinkNormalizer
}

// NewProfilesService creates a new instance of ProfilesService.
func NewProfilesService(repo repository.ProfilesRepository, normalizer *LinkNormalizer) *ProfilesService {
	if normalizer == nil {
		normalizer = NewLinkNormalizer()
	}
	return &ProfilesService{repo: repo, normalizer: normalizer}
}

// GetProfile returns the caller's company profile.
func (s *ProfilesService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.CompanyProfile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// UpdateProfile applies the caller's partial edits. URLs are normalized the
// same way the brand-voice trigger normalizes them.
func (s *ProfilesService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*entity.CompanyProfile, error) {
	patch := repository.ProfilePatch{
		BusinessOverview:     req.BusinessOverview,
		ValueProposition:     req.ValueProposition,
		IdealCustomerProfile: req.IdealCustomerProfile,
	}

	if req.CompanyName != nil {
		name := strings.TrimSpace(*req.CompanyName)
		if name == "" {
			return nil, ValidationError{Message: "company_name cannot be empty"}
		}
		patch.CompanyName = &name
	}
	if req.Website != nil {
		website, err := s.normalizer.NormalizeWebsiteURL(*req.Website)
		if err != nil {
			return nil, ValidationError{Message: "website is not a valid URL"}
		}
		patch.WebsiteURL = &website
	}
	if req.SocialURLs != nil {
		socials := s.normalizer.NormalizeSocialLinks(ctx, req.SocialURLs)
		patch.SocialURLs = &socials
	}

	return s.repo.Update(ctx, userID, patch)
}
