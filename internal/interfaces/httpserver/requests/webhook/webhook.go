// Package webhookreq contains HTTP request DTOs for platform adapter webhooks.
package webhookreq

import "github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/requests"

// CandidateMessageRequest is a candidate message relayed by a platform
// adapter. ChatID wins when set; otherwise the conversation is found or
// created by platform and username.
type CandidateMessageRequest struct {
	ChatID            string                       `json:"chat_id"`
	PlatformID        string                       `json:"platform_id"`
	CandidateUsername string                       `json:"candidate_username"`
	CandidateName     string                       `json:"candidate_name"`
	ExternalChatID    string                       `json:"external_chat_id"`
	ExternalID        string                       `json:"external_id"`
	Content           string                       `json:"content"`
	Attachments       []requests.AttachmentRequest `json:"attachments" binding:"omitempty,dive"`
}
