package entity

import (
	"fmt"
	"net/url"
	"regexp"
)

// maxURLLength defines the maximum allowed length for stored article URLs.
const maxURLLength = 2048

var countryCodeRe = regexp.MustCompile(`^[A-Z]{2}$`)

// ValidateArticle checks the fields every stored article must carry.
func ValidateArticle(a *Article) error {
	if a.GdeltID == "" {
		return &ValidationError{Field: "gdelt_id", Message: "gdelt id is required"}
	}
	if a.SeenAt.IsZero() {
		return &ValidationError{Field: "seen_at", Message: "seen_at is required"}
	}
	if a.SourceCountry != "" && !countryCodeRe.MatchString(a.SourceCountry) {
		return &ValidationError{Field: "source_country", Message: "source_country must be an ISO alpha-2 code"}
	}
	return ValidateURL(a.URL)
}

// ValidateURL validates the format of an article URL. Empty URLs are allowed
// because GDELT occasionally records documents by identifier only.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	// HTTPまたはHTTPSスキームのみ許可
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}
	return nil
}
