package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandforge/content-engine/api/internal/entity"
)

// ErrProfileNotFound indicates no company profile exists for the lookup key.
var ErrProfileNotFound = errors.New("company profile not found")

// BrandVoiceUpdate carries the narrative fields written by the brand-voice
// receiver.
type BrandVoiceUpdate struct {
	BusinessOverview     string
	ValueProposition     string
	IdealCustomerProfile string
	Analysis             json.RawMessage
}

// ProfilePatch captures user-initiated partial edits.
type ProfilePatch struct {
	CompanyName          *string
	WebsiteURL           *string
	SocialURLs           *entity.SocialLinks
	BusinessOverview     *string
	ValueProposition     *string
	IdealCustomerProfile *string
}

// ProfilesRepository describes persistence for company profiles.
type ProfilesRepository interface {
	Upsert(ctx context.Context, profile *entity.CompanyProfile) (*entity.CompanyProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.CompanyProfile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CompanyProfile, error)
	Update(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*entity.CompanyProfile, error)
	ApplyBrandVoiceTx(ctx context.Context, tx pgx.Tx, profileID uuid.UUID, update BrandVoiceUpdate) (*entity.CompanyProfile, error)
	SetMascotDataTx(ctx context.Context, tx pgx.Tx, profileID uuid.UUID, mascot json.RawMessage) (*entity.CompanyProfile, error)
}

// PGXProfilesRepository implements ProfilesRepository using pgx.
type PGXProfilesRepository struct {
	pool pgxPool
}

// NewPGXProfilesRepository wires a pgx backed repository.
func NewPGXProfilesRepository(pool *pgxpool.Pool) *PGXProfilesRepository {
	return &PGXProfilesRepository{pool: pool}
}

const profileColumns = `id, user_id, company_name, website_url, social_urls, business_overview, value_proposition, ideal_customer_profile, brand_voice_analysis, mascot_data, created_at, updated_at`

// Upsert inserts or refreshes the profile keyed by user_id.
func (r *PGXProfilesRepository) Upsert(ctx context.Context, profile *entity.CompanyProfile) (*entity.CompanyProfile, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile payload is nil")
	}

	socials, err := json.Marshal(profile.SocialURLs)
	if err != nil {
		return nil, fmt.Errorf("marshal social urls: %w", err)
	}

	query := `
        INSERT INTO company_profiles (user_id, company_name, website_url, social_urls, updated_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (user_id) DO UPDATE SET
            company_name = EXCLUDED.company_name,
            website_url = COALESCE(EXCLUDED.website_url, company_profiles.website_url),
            social_urls = EXCLUDED.social_urls,
            updated_at = NOW()
        RETURNING ` + profileColumns

	stored, err := scanProfile(r.pool.QueryRow(ctx, query, profile.UserID, profile.CompanyName, profile.WebsiteURL, socials))
	if err != nil {
		return nil, fmt.Errorf("upsert company profile: %w", err)
	}
	return stored, nil
}

// GetByUserID fetches the caller's profile.
func (r *PGXProfilesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.CompanyProfile, error) {
	profile, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM company_profiles WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("query profile by user: %w", err)
	}
	return profile, nil
}

// GetByID fetches a profile by identifier.
func (r *PGXProfilesRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CompanyProfile, error) {
	profile, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM company_profiles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("query profile by id: %w", err)
	}
	return profile, nil
}

// Update patches profile attributes owned by the user.
func (r *PGXProfilesRepository) Update(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*entity.CompanyProfile, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.CompanyName != nil {
		add("company_name", *patch.CompanyName)
	}
	if patch.WebsiteURL != nil {
		add("website_url", *patch.WebsiteURL)
	}
	if patch.SocialURLs != nil {
		socials, err := json.Marshal(*patch.SocialURLs)
		if err != nil {
			return nil, fmt.Errorf("marshal social urls: %w", err)
		}
		add("social_urls", socials)
	}
	if patch.BusinessOverview != nil {
		add("business_overview", *patch.BusinessOverview)
	}
	if patch.ValueProposition != nil {
		add("value_proposition", *patch.ValueProposition)
	}
	if patch.IdealCustomerProfile != nil {
		add("ideal_customer_profile", *patch.IdealCustomerProfile)
	}

	if len(setClauses) == 0 {
		return r.GetByUserID(ctx, userID)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE company_profiles SET %s WHERE user_id = $%d RETURNING %s`, strings.Join(setClauses, ", "), idx, profileColumns)

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("update company profile: %w", err)
	}
	return profile, nil
}

// ApplyBrandVoiceTx overwrites the narrative fields within an open
// transaction; invoked from the session completion path.
func (r *PGXProfilesRepository) ApplyBrandVoiceTx(ctx context.Context, tx pgx.Tx, profileID uuid.UUID, update BrandVoiceUpdate) (*entity.CompanyProfile, error) {
	analysis := update.Analysis
	if len(analysis) == 0 {
		analysis = json.RawMessage("{}")
	}

	query := `
        UPDATE company_profiles
        SET business_overview = $2,
            value_proposition = $3,
            ideal_customer_profile = $4,
            brand_voice_analysis = $5,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + profileColumns

	profile, err := scanProfile(tx.QueryRow(ctx, query, profileID, update.BusinessOverview, update.ValueProposition, update.IdealCustomerProfile, analysis))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("apply brand voice update: %w", err)
	}
	return profile, nil
}

// SetMascotDataTx overwrites the mascot payload within an open transaction.
func (r *PGXProfilesRepository) SetMascotDataTx(ctx context.Context, tx pgx.Tx, profileID uuid.UUID, mascot json.RawMessage) (*entity.CompanyProfile, error) {
	if len(mascot) == 0 {
		mascot = json.RawMessage("{}")
	}

	query := `
        UPDATE company_profiles
        SET mascot_data = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING ` + profileColumns

	profile, err := scanProfile(tx.QueryRow(ctx, query, profileID, mascot))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("set mascot data: %w", err)
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (*entity.CompanyProfile, error) {
	var (
		profile entity.CompanyProfile
		socials []byte
	)
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.CompanyName,
		&profile.WebsiteURL,
		&socials,
		&profile.BusinessOverview,
		&profile.ValueProposition,
		&profile.IdealCustomerProfile,
		&profile.BrandVoiceAnalysis,
		&profile.MascotData,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(socials) > 0 {
		if err := json.Unmarshal(socials, &profile.SocialURLs); err != nil {
			return nil, fmt.Errorf("decode social urls: %w", err)
		}
	}
	return &profile, nil
}
