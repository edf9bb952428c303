package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// PIILevel controls how candidate-supplied text appears in logs and spans.
type PIILevel string

const (
	// PIILevelNone redacts candidate content entirely.
	PIILevelNone PIILevel = "none"
	// PIILevelHashed replaces contact details with salted hashes.
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull leaves text untouched.
	PIILevelFull PIILevel = "full"
)

// previewRunes bounds message previews written to telemetry.
const previewRunes = 64

// Sanitizer scrubs recruiting conversation text before it reaches telemetry.
type Sanitizer struct {
	level PIILevel
	salt  string

	emailPattern *regexp.Regexp
	phonePattern *regexp.Regexp
	urlPattern   *regexp.Regexp
	ipv4Pattern  *regexp.Regexp
}

// NewSanitizer returns a sanitizer that salts hashes with salt.
func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	return &Sanitizer{
		level:        level,
		salt:         salt,
		emailPattern: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		phonePattern: regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?(?:\(\d{3}\)|\d{3})[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		urlPattern:   regexp.MustCompile(`https?://[^\s]+`),
		ipv4Pattern:  regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
	}
}

// Level returns the configured level.
func (s *Sanitizer) Level() PIILevel {
	if s == nil {
		return PIILevelNone
	}
	return s.level
}

// SanitizeContent scrubs a message body and truncates it to a preview.
func (s *Sanitizer) SanitizeContent(content string) string {
	switch s.Level() {
	case PIILevelNone:
		if content == "" {
			return ""
		}
		return "[REDACTED]"
	case PIILevelFull:
		return preview(content)
	default:
		return preview(s.scrub(content))
	}
}

// SanitizeUsername hides a candidate handle unless the level is full.
func (s *Sanitizer) SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	switch s.Level() {
	case PIILevelNone:
		return "[REDACTED]"
	case PIILevelFull:
		return username
	default:
		return "user:" + s.hash(username)
	}
}

// SanitizeFields scrubs every value of a free-form field map.
func (s *Sanitizer) SanitizeFields(fields map[string]string) map[string]string {
	if fields == nil {
		return nil
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = s.SanitizeContent(v)
	}
	return out
}

func (s *Sanitizer) scrub(input string) string {
	result := s.emailPattern.ReplaceAllStringFunc(input, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(match))
	})
	result = s.urlPattern.ReplaceAllString(result, "[URL]")
	result = s.ipv4Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[IP:%s]", s.hash(match))
	})
	result = s.phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", s.hash(match))
	})
	return result
}

func (s *Sanitizer) hash(data string) string {
	h := sha256.New()
	h.Write([]byte(data + s.salt))
	return hex.EncodeToString(h.Sum(nil))[:8]
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewRunes]) + "..."
}
