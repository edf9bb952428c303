// Package realtime defines the events pushed to connected operator sessions
// and the Broadcaster contract the rest of the domain publishes through.
package realtime

import (
	"context"
	"time"
)

// EventKind names a pushed event.
type EventKind string

const (
	EventMessageCreated  EventKind = "message.created"
	EventChatCreated     EventKind = "chat.created"
	EventChatUpdated     EventKind = "chat.updated"
	EventMessagesRead    EventKind = "messages.read"
	EventTyping          EventKind = "typing"
	EventTypingStop      EventKind = "typing.stop"
	EventFollowUpDue     EventKind = "followup.due"
	EventActivityUpdated EventKind = "activity.updated"
	EventError           EventKind = "error"
	EventJoined          EventKind = "joined"
)

// OperatorsRoom reaches every connected operator session.
const OperatorsRoom = "operators"

// ChatRoom returns the room for a conversation.
func ChatRoom(chatID string) string {
	return "chat:" + chatID
}

// OperatorRoom returns the personal room for one operator.
func OperatorRoom(operatorID string) string {
	return "operator:" + operatorID
}

// Event is the envelope written to sessions.
type Event struct {
	Kind    EventKind `json:"type"`
	ChatID  string    `json:"chat_id,omitempty"`
	Payload any       `json:"payload,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(kind EventKind, chatID string, payload any) Event {
	return Event{Kind: kind, ChatID: chatID, Payload: payload, SentAt: time.Now().UTC()}
}

// Delivery addresses an event to one or more rooms. A session in several of
// the rooms receives the event once.
type Delivery struct {
	Rooms []string
	// ExcludeSession skips one session, used for typing echoes.
	ExcludeSession string
	Event          Event
}

// Broadcaster fans deliveries out to connected sessions. Implementations are
// best-effort: they must not block on slow sessions.
type Broadcaster interface {
	Broadcast(ctx context.Context, delivery Delivery) error
}

// Operator identifies the operator behind a session or typing event.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TypingPayload is sent with typing events.
type TypingPayload struct {
	Operator Operator `json:"operator"`
}

// ReadPayload is sent with messages.read events.
type ReadPayload struct {
	UnreadCount    int      `json:"unread_count"`
	MessagesMarked int64    `json:"messages_marked"`
	Operator       Operator `json:"operator"`
}

// ErrorPayload reports a failed client command back to its session.
type ErrorPayload struct {
	Command string `json:"command,omitempty"`
	Message string `json:"message"`
	Type    string `json:"error_type"`
}

// CommandKind names a client command sent over the socket.
type CommandKind string

const (
	CommandJoin        CommandKind = "join"
	CommandLeave       CommandKind = "leave"
	CommandTyping      CommandKind = "typing"
	CommandTypingStop  CommandKind = "typing.stop"
	CommandSendMessage CommandKind = "message.send"
)

// Command is a client-to-server frame.
type Command struct {
	Kind        CommandKind         `json:"type"`
	ChatID      string              `json:"chat_id,omitempty"`
	Content     string              `json:"content,omitempty"`
	Attachments []CommandAttachment `json:"attachments,omitempty"`
}

// CommandAttachment carries attachment metadata in a send command.
type CommandAttachment struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	StoragePath  string `json:"storage_path"`
	Size         int64  `json:"size"`
}
