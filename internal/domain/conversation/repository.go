package conversation

import (
	"context"
	"time"
)

// MessageMutation receives the locked chat, updates its derived fields, and
// returns the message to insert. The repository persists both in one step.
type MessageMutation func(chat *Chat) (*Message, error)

// ChatMutation edits a locked chat in place.
type ChatMutation func(chat *Chat) error

// Repository persists chats and their messages.
type Repository interface {
	CreateChat(ctx context.Context, chat *Chat) error
	// FindOrCreateChat stores chat unless one already exists for its
	// (platform, candidate username) pair. It reports whether a row was created.
	FindOrCreateChat(ctx context.Context, chat *Chat) (*Chat, bool, error)
	FindChatByID(ctx context.Context, id string) (*Chat, error)
	FindChatByCandidate(ctx context.Context, platformID, username string) (*Chat, error)
	ListChats(ctx context.Context, filter Filter, pagination *Pagination) ([]*Chat, int64, error)

	// AppendMessage stores the message built by mutate under the chat lock.
	// A message whose ExternalID is already stored for the chat is not
	// inserted again; the stored one comes back with Duplicate set.
	AppendMessage(ctx context.Context, chatID string, mutate MessageMutation) (*AppendResult, error)
	UpdateChat(ctx context.Context, chatID string, mutate ChatMutation) (*Chat, error)
	MarkRead(ctx context.Context, chatID string) (*ReadResult, error)
	// ListMessages returns messages with sequence greater than afterSequence, oldest first.
	ListMessages(ctx context.Context, chatID string, afterSequence int64, limit int) ([]*Message, error)

	// ListFollowUpsDue returns chats whose deadline falls in (from, to].
	ListFollowUpsDue(ctx context.Context, from, to time.Time) ([]*Chat, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
}
