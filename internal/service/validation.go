package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/brandforge/content-engine/api/internal/entity"
)

var idnaProfile = idna.Lookup

const trackingPrefix = "utm_"

var allowedSocialDomains = map[string]string{
	"linkedin.com":  "linkedin",
	"facebook.com":  "facebook",
	"instagram.com": "instagram",
	"youtube.com":   "youtube",
	"youtu.be":      "youtube",
	"tiktok.com":    "tiktok",
}

// HTTPClient abstracts HTTP requests for validation purposes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// LinkNormalizer cleans caller-supplied website and social URLs before they
// are stored on the company profile. With no HTTP client configured it only
// performs syntactic normalization; with one, social links are additionally
// checked for reachability.
type LinkNormalizer struct {
	httpClient HTTPClient
}

// LinkNormalizerOption configures optional dependencies.
type LinkNormalizerOption func(*LinkNormalizer)

// WithHTTPClient enables reachability checks on social links.
func WithHTTPClient(client HTTPClient) LinkNormalizerOption {
	return func(n *LinkNormalizer) {
		n.httpClient = client
	}
}

// NewLinkNormalizer builds a normalizer with sensible defaults.
func NewLinkNormalizer(opts ...LinkNormalizerOption) *LinkNormalizer {
	n := &LinkNormalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NormalizeWebsiteURL canonicalizes a website address: forces https, converts
// internationalized hostnames to ASCII and strips tracking parameters.
func (n *LinkNormalizer) NormalizeWebsiteURL(raw string) (string, error) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", err
	}
	asciiHost, err := idnaProfile.ToASCII(u.Hostname())
	if err != nil || asciiHost == "" {
		return "", errors.New("invalid hostname")
	}
	if port := u.Port(); port != "" {
		u.Host = asciiHost + ":" + port
	} else {
		u.Host = asciiHost
	}
	stripTracking(u)
	return u.String(), nil
}

// NormalizeSocialLinks validates each supplied social URL against its claimed
// network and returns the canonical set. Links that fail validation are
// silently dropped; the caller stores whatever survives.
func (n *LinkNormalizer) NormalizeSocialLinks(ctx context.Context, socials map[string]string) entity.SocialLinks {
	result := entity.SocialLinks{}
	if len(socials) == 0 {
		return result
	}

	for key, raw := range socials {
		platform := canonicalSocialKey(key)
		if platform == "" {
			continue
		}
		sanitized, ok := n.cleanSocialLink(ctx, platform, raw)
		if !ok {
			continue
		}
		setSocialLink(&result, platform, sanitized)
	}
	return result
}

func (n *LinkNormalizer) cleanSocialLink(ctx context.Context, platform, raw string) (string, bool) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", false
	}
	hostPlatform, ok := hostMatchesAllowed(u.Hostname())
	if !ok || hostPlatform != platformFamily(platform) {
		return "", false
	}
	stripTracking(u)
	if n.httpClient != nil && !n.urlResolves(ctx, u.String()) {
		return "", false
	}
	return u.String(), true
}

func (n *LinkNormalizer) urlResolves(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := n.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return true
		}
		if resp.StatusCode != http.StatusMethodNotAllowed {
			return false
		}
	}

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	resp, err = n.httpClient.Do(getReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func setSocialLink(links *entity.SocialLinks, platform, value string) {
	switch platform {
	case "linkedin_company":
		links.LinkedInCompany = value
	case "linkedin_personal":
		links.LinkedInPersonal = value
	case "facebook":
		links.Facebook = value
	case "instagram":
		links.Instagram = value
	case "youtube":
		links.Youtube = value
	case "tiktok":
		links.Tiktok = value
	}
}

func canonicalSocialKey(key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "linkedin", "linkedin_company", "linkedincompanyurl", "linkedin_company_url":
		return "linkedin_company"
	case "linkedin_personal", "linkedinpersonalurl", "linkedin_personal_url":
		return "linkedin_personal"
	case "facebook", "facebook_url":
		return "facebook"
	case "instagram", "instagram_url", "ig":
		return "instagram"
	case "youtube", "youtube_url", "youtu", "youtu_be":
		return "youtube"
	case "tiktok", "tiktok_url":
		return "tiktok"
	default:
		return ""
	}
}

// platformFamily collapses the two linkedin slots onto their shared domain.
func platformFamily(platform string) string {
	if strings.HasPrefix(platform, "linkedin") {
		return "linkedin"
	}
	return platform
}

func hostMatchesAllowed(host string) (string, bool) {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return "", false
	}
	for domain, platform := range allowedSocialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform, true
		}
	}
	return "", false
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}
