package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidatePublicationYear(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidatePublicationYear(2026, now))
	assert.NoError(t, ValidatePublicationYear(1851, now))

	err := ValidatePublicationYear(2027, now)
	if assert.Error(t, err) {
		assert.Equal(t, "Publication year cannot be in the future (current year: 2026).", err.Error())
	}
	assert.Error(t, ValidatePublicationYear(-5, now))
}

func TestSlugify(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"Go":              "go",
		"  Web Dev  ":     "web-dev",
		"C++ & Rust!":     "c-rust",
		"already-slugged": "already-slugged",
		"!!!":             "",
		"Mixed_Case 2026": "mixed-case-2026",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()
	got := NormalizeTags([]string{"Go", " go ", "", "Web Dev", "web-dev", "!!"})
	assert.Equal(t, []string{"Go", "Web Dev"}, got)
}

func TestValidateTitle(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateTitle("title", "Hello", 10))
	assert.Error(t, ValidateTitle("title", "   ", 10))
	assert.Error(t, ValidateTitle("title", "much too long title", 10))
}
