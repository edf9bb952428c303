package telemetry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSanitizer(t *testing.T) {
	tests := []struct {
		name  string
		level PIILevel
	}{
		{"none level", PIILevelNone},
		{"hashed level", PIILevelHashed},
		{"full level", PIILevelFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSanitizer(tt.level, "unibox")
			require.NotNil(t, s)
			assert.Equal(t, tt.level, s.Level())
		})
	}
}

func TestNilSanitizerRedacts(t *testing.T) {
	var s *Sanitizer
	assert.Equal(t, PIILevelNone, s.Level())
	assert.Equal(t, "[REDACTED]", s.SanitizeContent("hello"))
}

func TestSanitizeContent_None(t *testing.T) {
	s := NewSanitizer(PIILevelNone, "unibox")
	assert.Equal(t, "[REDACTED]", s.SanitizeContent("reach me at jane@example.com"))
	assert.Equal(t, "", s.SanitizeContent(""))
}

func TestSanitizeContent_Full(t *testing.T) {
	s := NewSanitizer(PIILevelFull, "unibox")
	input := "reach me at jane@example.com"
	assert.Equal(t, input, s.SanitizeContent(input))
}

func TestSanitizeContent_Hashed(t *testing.T) {
	s := NewSanitizer(PIILevelHashed, "unibox")

	tests := []struct {
		name     string
		input    string
		hidden   string
		contains string
	}{
		{"email", "Contact jane.doe@example.com for the call", "jane.doe@example.com", "[EMAIL:"},
		{"phone", "Call me at 555-123-4567 tomorrow", "555-123-4567", "[PHONE:"},
		{"phone with area code in parens", "Call me at (555) 123-4567 tomorrow", "123-4567", "[PHONE:"},
		{"phone with country code", "Reach me on +1 555 123 4567", "555 123 4567", "[PHONE:"},
		{"phone without separators", "WhatsApp +15551234567 please", "5551234567", "[PHONE:"},
		{"url", "My portfolio is https://example.com/jane", "https://example.com/jane", "[URL]"},
		{"ip", "Server at 10.0.0.12 is mine", "10.0.0.12", "[IP:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.SanitizeContent(tt.input)
			assert.NotContains(t, result, tt.hidden)
			assert.Contains(t, result, tt.contains)
		})
	}
}

func TestSanitizeContent_Truncates(t *testing.T) {
	s := NewSanitizer(PIILevelFull, "unibox")
	result := s.SanitizeContent(strings.Repeat("a", 200))
	assert.Equal(t, previewRunes+3, len(result))
	assert.True(t, strings.HasSuffix(result, "..."))
}

func TestSanitizeUsername(t *testing.T) {
	hashed := NewSanitizer(PIILevelHashed, "unibox")
	first := hashed.SanitizeUsername("jane_dev")
	assert.True(t, strings.HasPrefix(first, "user:"))
	assert.Equal(t, first, hashed.SanitizeUsername("jane_dev"), "hash must be stable")
	assert.NotEqual(t, first, NewSanitizer(PIILevelHashed, "other").SanitizeUsername("jane_dev"), "salt must change the hash")

	assert.Equal(t, "jane_dev", NewSanitizer(PIILevelFull, "unibox").SanitizeUsername("jane_dev"))
	assert.Equal(t, "[REDACTED]", NewSanitizer(PIILevelNone, "unibox").SanitizeUsername("jane_dev"))
	assert.Equal(t, "", hashed.SanitizeUsername(""))
}

func TestSanitizeFields(t *testing.T) {
	s := NewSanitizer(PIILevelHashed, "unibox")
	assert.Nil(t, s.SanitizeFields(nil))

	out := s.SanitizeFields(map[string]string{"note": "email jane@example.com"})
	assert.NotContains(t, out["note"], "jane@example.com")
}
