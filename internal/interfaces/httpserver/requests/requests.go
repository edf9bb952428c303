// Package requests contains HTTP request DTOs shared across v1 routes.
package requests

import "github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"

// AttachmentRequest is attachment metadata returned by the upload service.
type AttachmentRequest struct {
	Filename     string `json:"filename" binding:"required"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type" binding:"required"`
	StoragePath  string `json:"storage_path" binding:"required"`
	Size         int64  `json:"size" binding:"gte=0"`
}

// ToAttachments converts request attachments to domain attachments.
func ToAttachments(in []AttachmentRequest) []conversation.Attachment {
	out := make([]conversation.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, conversation.Attachment{
			Filename:     a.Filename,
			OriginalName: a.OriginalName,
			MimeType:     a.MimeType,
			StoragePath:  a.StoragePath,
			Size:         a.Size,
		})
	}
	return out
}
