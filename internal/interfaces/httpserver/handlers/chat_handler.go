package handlers

import (
	"context"
	"time"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/ingest"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// ChatHandler handles conversation requests and announces the updates they
// commit.
type ChatHandler struct {
	conversations conversation.Service
	directory     directory.Service
	gateway       ingest.Gateway
	notifier      *realtime.Notifier
	now           func() time.Time
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(
	conversations conversation.Service,
	dir directory.Service,
	gateway ingest.Gateway,
	notifier *realtime.Notifier,
) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		directory:     dir,
		gateway:       gateway,
		notifier:      notifier,
		now:           time.Now,
	}
}

// Now returns the clock used for follow-up filters.
func (h *ChatHandler) Now() time.Time { return h.now().UTC() }

// CreateChat opens a conversation on an account of the given platform.
func (h *ChatHandler) CreateChat(ctx context.Context, params conversation.NewChatParams) (*conversation.Chat, error) {
	account, err := h.directory.GetAccount(ctx, params.PlatformAccountID)
	if err != nil {
		return nil, err
	}
	if account.PlatformID != params.PlatformID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"platform account does not belong to platform", nil, "chat-account-platform-mismatch")
	}
	if params.JobTypeID != nil {
		if _, err := h.directory.GetJobType(ctx, *params.JobTypeID); err != nil {
			return nil, err
		}
	}

	chat, err := h.conversations.CreateChat(ctx, params)
	if err != nil {
		return nil, err
	}
	h.notifier.ChatCreated(context.WithoutCancel(ctx), chat)
	return chat, nil
}

// GetChat retrieves a conversation by ID.
func (h *ChatHandler) GetChat(ctx context.Context, id string) (*conversation.Chat, error) {
	return h.conversations.GetChat(ctx, id)
}

// ListChats returns one page of filtered conversations.
func (h *ChatHandler) ListChats(ctx context.Context, filter conversation.Filter, pagination conversation.Pagination) ([]*conversation.Chat, int64, error) {
	return h.conversations.ListChats(ctx, filter, pagination)
}

// ListMessages returns messages after the given sequence.
func (h *ChatHandler) ListMessages(ctx context.Context, chatID string, afterSequence int64, limit int) ([]*conversation.Message, error) {
	return h.conversations.ListMessages(ctx, chatID, afterSequence, limit)
}

// SendMessage ingests an operator reply into an existing conversation.
func (h *ChatHandler) SendMessage(ctx context.Context, chatID string, operator realtime.Operator, content string, attachments []conversation.Attachment) (*ingest.Result, error) {
	return h.gateway.Ingest(ctx, ingest.Request{
		Target: ingest.Target{ChatID: chatID},
		Author: ingest.Author{
			Kind:         conversation.AuthorOperator,
			OperatorID:   operator.ID,
			OperatorName: operator.Name,
		},
		Content:     content,
		Attachments: attachments,
	})
}

// MarkRead clears the unread state and tells the room who read it.
func (h *ChatHandler) MarkRead(ctx context.Context, chatID string, operator realtime.Operator) (*conversation.ReadResult, error) {
	result, err := h.conversations.MarkRead(ctx, chatID)
	if err != nil {
		return nil, err
	}
	h.notifier.MessagesRead(context.WithoutCancel(ctx), result, operator)
	return result, nil
}

// UpdateFollowUpInterval changes the cadence and recomputes the deadline.
func (h *ChatHandler) UpdateFollowUpInterval(ctx context.Context, chatID string, days int) (*conversation.Chat, error) {
	return h.announce(ctx)(h.conversations.UpdateFollowUpInterval(ctx, chatID, days))
}

// UpdateStatus moves the conversation in the workflow.
func (h *ChatHandler) UpdateStatus(ctx context.Context, chatID string, status conversation.Status) (*conversation.Chat, error) {
	return h.announce(ctx)(h.conversations.UpdateStatus(ctx, chatID, status))
}

// UpdateNotes replaces the operator notes.
func (h *ChatHandler) UpdateNotes(ctx context.Context, chatID, notes string) (*conversation.Chat, error) {
	return h.announce(ctx)(h.conversations.UpdateNotes(ctx, chatID, notes))
}

// UpdateJobType assigns a known job type, or clears it when nil.
func (h *ChatHandler) UpdateJobType(ctx context.Context, chatID string, jobTypeID *string) (*conversation.Chat, error) {
	if jobTypeID != nil {
		if _, err := h.directory.GetJobType(ctx, *jobTypeID); err != nil {
			return nil, err
		}
	}
	return h.announce(ctx)(h.conversations.UpdateJobType(ctx, chatID, jobTypeID))
}

func (h *ChatHandler) announce(ctx context.Context) func(*conversation.Chat, error) (*conversation.Chat, error) {
	return func(chat *conversation.Chat, err error) (*conversation.Chat, error) {
		if err != nil {
			return nil, err
		}
		h.notifier.ChatUpdated(context.WithoutCancel(ctx), chat)
		return chat, nil
	}
}
