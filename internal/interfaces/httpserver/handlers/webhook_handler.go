package handlers

import (
	"context"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/ingest"
)

// WebhookHandler accepts messages relayed by platform adapters.
type WebhookHandler struct {
	gateway ingest.Gateway
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(gateway ingest.Gateway) *WebhookHandler {
	return &WebhookHandler{gateway: gateway}
}

// IngestCandidateMessage stores a candidate message, creating the
// conversation on first contact.
func (h *WebhookHandler) IngestCandidateMessage(ctx context.Context, target ingest.Target, content, externalID string, attachments []conversation.Attachment) (*ingest.Result, error) {
	return h.gateway.Ingest(ctx, ingest.Request{
		Target:      target,
		Author:      ingest.Author{Kind: conversation.AuthorCandidate},
		Content:     content,
		Attachments: attachments,
		ExternalID:  externalID,
	})
}
