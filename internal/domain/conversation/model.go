package conversation

import (
	"time"
)

// Status tracks where a conversation sits in the recruiting workflow.
type Status string

const (
	StatusActive       Status = "active"
	StatusStarred      Status = "starred"
	StatusWorkingOnPOC Status = "working on poc"
	StatusToArchive    Status = "to archive"
	StatusClosed       Status = "closed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusStarred, StatusWorkingOnPOC, StatusToArchive, StatusClosed:
		return true
	}
	return false
}

// AuthorKind identifies who wrote a message.
type AuthorKind string

const (
	AuthorOperator  AuthorKind = "operator"
	AuthorCandidate AuthorKind = "candidate"
)

// Valid reports whether k is a known author kind.
func (k AuthorKind) Valid() bool {
	return k == AuthorOperator || k == AuthorCandidate
}

// Chat is a candidate thread on one platform account.
type Chat struct {
	ID                string     `json:"id"`
	PlatformID        string     `json:"platform_id"`
	PlatformAccountID string     `json:"platform_account_id"`
	JobPostingID      *string    `json:"job_posting_id,omitempty"`
	JobTypeID         *string    `json:"job_type_id,omitempty"`
	CandidateUsername string     `json:"candidate_username"`
	CandidateName     string     `json:"candidate_name,omitempty"`
	ExternalID        string     `json:"external_id,omitempty"`
	Status            Status     `json:"status"`
	FollowUpInterval  int        `json:"follow_up_interval"`
	LastMessageDate   *time.Time `json:"last_message_date"`
	FollowUpDate      *time.Time `json:"follow_up_date"`
	Notes             string     `json:"notes"`
	UnreadCount       int        `json:"unread_count"`
	LastSequence      int64      `json:"last_sequence"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate it without aliasing.
func (c *Chat) Clone() *Chat {
	if c == nil {
		return nil
	}
	out := *c
	out.JobPostingID = cloneString(c.JobPostingID)
	out.JobTypeID = cloneString(c.JobTypeID)
	out.LastMessageDate = cloneTime(c.LastMessageDate)
	out.FollowUpDate = cloneTime(c.FollowUpDate)
	return &out
}

// Attachment is metadata returned by the storage layer after an upload.
type Attachment struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	StoragePath  string `json:"storage_path"`
	Size         int64  `json:"size"`
}

// Message is an append-only entry in a chat. Only IsRead changes after creation.
type Message struct {
	ID          string       `json:"id"`
	ChatID      string       `json:"chat_id"`
	SenderID    *string      `json:"sender_id,omitempty"`
	Content     string       `json:"content"`
	IsFromUs    bool         `json:"is_from_us"`
	Attachments []Attachment `json:"attachments"`
	ExternalID  *string      `json:"external_id,omitempty"`
	IsRead      bool         `json:"is_read"`
	Sequence    int64        `json:"sequence"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Author returns the author kind implied by IsFromUs.
func (m *Message) Author() AuthorKind {
	if m.IsFromUs {
		return AuthorOperator
	}
	return AuthorCandidate
}

// NewChatParams holds the inputs for creating a conversation.
type NewChatParams struct {
	PlatformID        string
	PlatformAccountID string
	CandidateUsername string
	CandidateName     string
	ExternalID        string
	JobPostingID      *string
	JobTypeID         *string
	FollowUpInterval  int
}

// NewMessageParams holds the inputs for createMessage.
type NewMessageParams struct {
	ChatID      string
	Author      AuthorKind
	SenderID    *string
	Content     string
	Attachments []Attachment
	ExternalID  *string
}

// AppendResult is the committed outcome of appending a message.
type AppendResult struct {
	Message *Message
	Chat    *Chat
	// PreviousFollowUpDate is the deadline in force before this message landed.
	PreviousFollowUpDate *time.Time
	// Duplicate reports that the external id was already stored for the chat;
	// Message is the earlier row and Chat is unchanged.
	Duplicate bool
}

// ReadResult is the outcome of markRead.
type ReadResult struct {
	Chat *Chat
	// MessagesMarked counts the messages flipped to read by this call.
	MessagesMarked int64
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
