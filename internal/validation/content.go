package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// ValidatePublicationYear rejects years after the current one.
func ValidatePublicationYear(year int, now time.Time) error {
	if year > now.Year() {
		return fmt.Errorf("Publication year cannot be in the future (current year: %d).", now.Year())
	}
	if year < 0 {
		return fmt.Errorf("publication year must be positive")
	}
	return nil
}

// ValidateTitle requires a non-blank title of at most max characters.
func ValidateTitle(field, title string, max int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(title) > max {
		return fmt.Errorf("%s must not exceed %d characters", field, max)
	}
	return nil
}

// Slugify lowercases name and joins its alphanumeric runs with hyphens.
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

// NormalizeTags trims, drops blanks and de-duplicates tag names by slug.
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		slug := Slugify(n)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, n)
	}
	return out
}
