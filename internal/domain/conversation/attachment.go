package conversation

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultMimeType = "application/octet-stream"

// NormalizeAttachments copies attachments with their declared MIME types
// lowercased, stripped of parameters and resolved to the canonical name when
// the type is a known alias. Unknown types are kept as declared.
func NormalizeAttachments(attachments []Attachment) []Attachment {
	out := make([]Attachment, len(attachments))
	for i, a := range attachments {
		a.MimeType = normalizeMimeType(a.MimeType)
		out[i] = a
	}
	return out
}

func normalizeMimeType(declared string) string {
	declared, _, _ = strings.Cut(declared, ";")
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared == "" {
		return defaultMimeType
	}
	if known := mimetype.Lookup(declared); known != nil {
		return known.String()
	}
	return declared
}
