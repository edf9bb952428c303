// Package chatres contains HTTP response DTOs for conversation endpoints.
package chatres

import (
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/ingest"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/responses"
)

// ListChatsResponse is one page of conversations.
type ListChatsResponse struct {
	Object     string               `json:"object"`
	Data       []*conversation.Chat `json:"data"`
	Pagination responses.Pagination `json:"pagination"`
}

// ListMessagesResponse is a window of messages in sequence order.
type ListMessagesResponse struct {
	Object string                  `json:"object"`
	Data   []*conversation.Message `json:"data"`
	// NextSequence is the cursor for the following window, zero when empty.
	NextSequence int64 `json:"next_sequence"`
}

// MessageResponse is the result of sending or ingesting a message.
type MessageResponse struct {
	Object      string                `json:"object"`
	Message     *conversation.Message `json:"message"`
	Chat        *conversation.Chat    `json:"chat"`
	ChatCreated bool                  `json:"chat_created"`
	OnTime      *bool                 `json:"on_time,omitempty"`
}

// ReadResponse reports a markRead outcome.
type ReadResponse struct {
	Object         string             `json:"object"`
	Chat           *conversation.Chat `json:"chat"`
	MessagesMarked int64              `json:"messages_marked"`
}

// NewListChatsResponse wraps a page of chats.
func NewListChatsResponse(chats []*conversation.Chat, pagination conversation.Pagination, total int64) *ListChatsResponse {
	if chats == nil {
		chats = []*conversation.Chat{}
	}
	return &ListChatsResponse{
		Object:     "list",
		Data:       chats,
		Pagination: responses.NewPagination(pagination.Page, pagination.PageSize, total),
	}
}

// NewListMessagesResponse wraps a message window.
func NewListMessagesResponse(messages []*conversation.Message) *ListMessagesResponse {
	if messages == nil {
		messages = []*conversation.Message{}
	}
	resp := &ListMessagesResponse{Object: "list", Data: messages}
	if n := len(messages); n > 0 {
		resp.NextSequence = messages[n-1].Sequence
	}
	return resp
}

// NewMessageResponse maps an ingest result.
func NewMessageResponse(result *ingest.Result) *MessageResponse {
	return &MessageResponse{
		Object:      "message",
		Message:     result.Message,
		Chat:        result.Chat,
		ChatCreated: result.ChatCreated,
		OnTime:      result.OnTime,
	}
}

// NewReadResponse maps a markRead result.
func NewReadResponse(result *conversation.ReadResult) *ReadResponse {
	return &ReadResponse{
		Object:         "chat.read",
		Chat:           result.Chat,
		MessagesMarked: result.MessagesMarked,
	}
}
