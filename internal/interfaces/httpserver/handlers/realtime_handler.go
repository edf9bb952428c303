package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/ingest"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/hub"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// JoinedPayload acknowledges a join command.
type JoinedPayload struct {
	SessionID      string             `json:"session_id"`
	Chat           *conversation.Chat `json:"chat"`
	MessagesMarked int64              `json:"messages_marked"`
}

// RealtimeHandler upgrades operator sockets and executes their commands.
type RealtimeHandler struct {
	hub           *hub.Hub
	conversations conversation.Service
	gateway       ingest.Gateway
	notifier      *realtime.Notifier
	log           zerolog.Logger
}

// NewRealtimeHandler creates a new realtime handler.
func NewRealtimeHandler(
	h *hub.Hub,
	conversations conversation.Service,
	gateway ingest.Gateway,
	notifier *realtime.Notifier,
	log zerolog.Logger,
) *RealtimeHandler {
	return &RealtimeHandler{
		hub:           h,
		conversations: conversations,
		gateway:       gateway,
		notifier:      notifier,
		log:           log.With().Str("component", "realtime-handler").Logger(),
	}
}

// Serve runs the socket session for operator until it disconnects.
func (h *RealtimeHandler) Serve(w http.ResponseWriter, r *http.Request, operator realtime.Operator) error {
	return h.hub.Serve(w, r, operator, h)
}

// Schema returns the JSON Schema of the socket protocol.
func (h *RealtimeHandler) Schema() realtime.ProtocolSchema {
	return realtime.Schema()
}

// Dispatch executes one client command. Failures are reported to the
// issuing session only.
func (h *RealtimeHandler) Dispatch(ctx context.Context, s *hub.Session, cmd realtime.Command) {
	var err error
	switch cmd.Kind {
	case realtime.CommandJoin:
		err = h.join(ctx, s, cmd.ChatID)
	case realtime.CommandLeave:
		err = h.leave(ctx, s, cmd.ChatID)
	case realtime.CommandTyping, realtime.CommandTypingStop:
		err = h.typing(ctx, s, cmd.ChatID, cmd.Kind == realtime.CommandTypingStop)
	case realtime.CommandSendMessage:
		err = h.send(ctx, s, cmd)
	default:
		err = platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"unknown command", nil, "realtime-unknown-command")
	}
	if err != nil {
		h.reject(s, cmd, err)
	}
}

// join subscribes the session to the chat room, marks the chat read, and
// tells the room.
func (h *RealtimeHandler) join(ctx context.Context, s *hub.Session, chatID string) error {
	if err := requireChatID(ctx, chatID); err != nil {
		return err
	}
	if _, err := h.conversations.GetChat(ctx, chatID); err != nil {
		return err
	}

	s.Join(realtime.ChatRoom(chatID))

	result, err := h.conversations.MarkRead(ctx, chatID)
	if err != nil {
		return err
	}
	s.Send(realtime.NewEvent(realtime.EventJoined, chatID, JoinedPayload{
		SessionID:      s.ID(),
		Chat:           result.Chat,
		MessagesMarked: result.MessagesMarked,
	}))
	h.notifier.MessagesRead(ctx, result, s.Operator())
	return nil
}

func (h *RealtimeHandler) leave(ctx context.Context, s *hub.Session, chatID string) error {
	if err := requireChatID(ctx, chatID); err != nil {
		return err
	}
	s.Leave(realtime.ChatRoom(chatID))
	return nil
}

func (h *RealtimeHandler) typing(ctx context.Context, s *hub.Session, chatID string, stop bool) error {
	if err := requireChatID(ctx, chatID); err != nil {
		return err
	}
	if !s.InRoom(realtime.ChatRoom(chatID)) {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"join the chat before sending typing events", nil, "realtime-typing-not-joined")
	}
	h.notifier.Typing(ctx, chatID, s.ID(), s.Operator(), stop)
	return nil
}

// send ingests an operator reply. Sessions outside the chat room get the
// created message directly since the room broadcast will not reach them.
func (h *RealtimeHandler) send(ctx context.Context, s *hub.Session, cmd realtime.Command) error {
	if err := requireChatID(ctx, cmd.ChatID); err != nil {
		return err
	}
	operator := s.Operator()
	result, err := h.gateway.Ingest(ctx, ingest.Request{
		Target: ingest.Target{ChatID: cmd.ChatID},
		Author: ingest.Author{
			Kind:         conversation.AuthorOperator,
			OperatorID:   operator.ID,
			OperatorName: operator.Name,
		},
		Content:     cmd.Content,
		Attachments: commandAttachments(cmd.Attachments),
	})
	if err != nil {
		return err
	}
	if !s.InRoom(realtime.ChatRoom(cmd.ChatID)) {
		s.Send(realtime.NewEvent(realtime.EventMessageCreated, result.Chat.ID, result.Message))
	}
	return nil
}

func (h *RealtimeHandler) reject(s *hub.Session, cmd realtime.Command, err error) {
	payload := realtime.ErrorPayload{
		Command: string(cmd.Kind),
		Message: err.Error(),
		Type:    platformerrors.ErrorTypeString(platformerrors.ErrorTypeInternal),
	}
	if pe := platformerrors.GetPlatformError(err); pe != nil {
		payload.Message = pe.Message
		payload.Type = platformerrors.ErrorTypeString(pe.Type)
		if platformerrors.ErrorTypeToHTTPStatus(pe.Type) >= http.StatusInternalServerError {
			platformerrors.LogError(h.log, pe)
		}
	} else {
		h.log.Error().Err(err).Str("command", string(cmd.Kind)).Str("session_id", s.ID()).Msg("realtime command failed")
		payload.Message = "internal error"
	}
	s.Send(realtime.NewEvent(realtime.EventError, cmd.ChatID, payload))
}

func requireChatID(ctx context.Context, chatID string) error {
	if strings.TrimSpace(chatID) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"chat_id is required", nil, "realtime-chat-id-required")
	}
	return nil
}

func commandAttachments(in []realtime.CommandAttachment) []conversation.Attachment {
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
