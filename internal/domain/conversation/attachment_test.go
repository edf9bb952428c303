package conversation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
)

func TestNormalizeAttachments(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		want     string
	}{
		{"canonical", "application/pdf", "application/pdf"},
		{"alias resolves", "Application/X-Zip-Compressed", "application/zip"},
		{"parameters dropped", "text/plain; charset=utf-8", "text/plain"},
		{"missing type", "  ", "application/octet-stream"},
		{"unknown kept", "application/vnd.acme.resume", "application/vnd.acme.resume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []conversation.Attachment{{Filename: "cv", MimeType: tt.declared, StoragePath: "uploads/cv"}}
			out := conversation.NormalizeAttachments(in)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].MimeType)
			assert.Equal(t, tt.declared, in[0].MimeType, "input must not be mutated")
		})
	}
}

func TestCreateMessageStoresNormalizedMimeType(t *testing.T) {
	svc, _ := newService(t)
	chat := newChat(t, svc, "jane")

	cv := conversation.Attachment{Filename: "cv.zip", MimeType: "application/x-zip", StoragePath: "uploads/cv.zip", Size: 2048}
	result, err := svc.CreateMessage(context.Background(), conversation.NewMessageParams{
		ChatID:      chat.ID,
		Author:      conversation.AuthorCandidate,
		Attachments: []conversation.Attachment{cv},
	})
	require.NoError(t, err)
	require.Len(t, result.Message.Attachments, 1)
	assert.Equal(t, "application/zip", result.Message.Attachments[0].MimeType)
}
