package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
)

// Chat is the persisted conversation with its derived follow-up fields.
type Chat struct {
	ID                string     `gorm:"type:uuid;primaryKey"`
	PlatformID        string     `gorm:"type:uuid;uniqueIndex:idx_chat_platform_candidate;not null"`
	PlatformAccountID string     `gorm:"type:uuid;index;not null"`
	JobPostingID      *string    `gorm:"type:uuid;index"`
	JobTypeID         *string    `gorm:"type:uuid;index"`
	CandidateUsername string     `gorm:"type:varchar(256);uniqueIndex:idx_chat_platform_candidate;not null"`
	CandidateName     string     `gorm:"type:varchar(256)"`
	ExternalID        string     `gorm:"type:varchar(256)"`
	Status            string     `gorm:"type:varchar(32);index;not null;default:'active'"`
	FollowUpInterval  int        `gorm:"not null;default:2"`
	LastMessageDate   *time.Time `gorm:"index"`
	FollowUpDate      *time.Time `gorm:"index"`
	Notes             string     `gorm:"type:text"`
	UnreadCount       int        `gorm:"not null;default:0"`
	LastSequence      int64      `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Chat) TableName() string {
	return "chats"
}

func NewSchemaChat(c *conversation.Chat) *Chat {
	return &Chat{
		ID:                c.ID,
		PlatformID:        c.PlatformID,
		PlatformAccountID: c.PlatformAccountID,
		JobPostingID:      c.JobPostingID,
		JobTypeID:         c.JobTypeID,
		CandidateUsername: c.CandidateUsername,
		CandidateName:     c.CandidateName,
		ExternalID:        c.ExternalID,
		Status:            string(c.Status),
		FollowUpInterval:  c.FollowUpInterval,
		LastMessageDate:   c.LastMessageDate,
		FollowUpDate:      c.FollowUpDate,
		Notes:             c.Notes,
		UnreadCount:       c.UnreadCount,
		LastSequence:      c.LastSequence,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (c *Chat) EtoD() *conversation.Chat {
	return &conversation.Chat{
		ID:                c.ID,
		PlatformID:        c.PlatformID,
		PlatformAccountID: c.PlatformAccountID,
		JobPostingID:      c.JobPostingID,
		JobTypeID:         c.JobTypeID,
		CandidateUsername: c.CandidateUsername,
		CandidateName:     c.CandidateName,
		ExternalID:        c.ExternalID,
		Status:            conversation.Status(c.Status),
		FollowUpInterval:  c.FollowUpInterval,
		LastMessageDate:   utcPtr(c.LastMessageDate),
		FollowUpDate:      utcPtr(c.FollowUpDate),
		Notes:             c.Notes,
		UnreadCount:       c.UnreadCount,
		LastSequence:      c.LastSequence,
		CreatedAt:         c.CreatedAt.UTC(),
		UpdatedAt:         c.UpdatedAt.UTC(),
	}
}

// Message is the persisted chat message. Sequence is unique per chat.
type Message struct {
	ID          string         `gorm:"type:uuid;primaryKey"`
	ChatID      string         `gorm:"type:uuid;uniqueIndex:idx_message_chat_sequence;uniqueIndex:idx_message_chat_external,where:external_id IS NOT NULL;not null"`
	Sequence    int64          `gorm:"uniqueIndex:idx_message_chat_sequence;not null"`
	SenderID    *string        `gorm:"type:varchar(128);index"`
	Content     string         `gorm:"type:text"`
	IsFromUs    bool           `gorm:"not null"`
	Attachments datatypes.JSON `gorm:"type:jsonb"`
	ExternalID  *string        `gorm:"type:varchar(256);uniqueIndex:idx_message_chat_external"`
	IsRead      bool           `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
}

func (Message) TableName() string {
	return "messages"
}

func NewSchemaMessage(m *conversation.Message) (*Message, error) {
	attachments := m.Attachments
	if attachments == nil {
		attachments = []conversation.Attachment{}
	}
	raw, err := json.Marshal(attachments)
	if err != nil {
		return nil, err
	}
	return &Message{
		ID:          m.ID,
		ChatID:      m.ChatID,
		Sequence:    m.Sequence,
		SenderID:    m.SenderID,
		Content:     m.Content,
		IsFromUs:    m.IsFromUs,
		Attachments: datatypes.JSON(raw),
		ExternalID:  m.ExternalID,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func (m *Message) EtoD() *conversation.Message {
	attachments := []conversation.Attachment{}
	if len(m.Attachments) > 0 {
		_ = json.Unmarshal(m.Attachments, &attachments)
	}
	return &conversation.Message{
		ID:          m.ID,
		ChatID:      m.ChatID,
		SenderID:    m.SenderID,
		Content:     m.Content,
		IsFromUs:    m.IsFromUs,
		Attachments: attachments,
		ExternalID:  m.ExternalID,
		IsRead:      m.IsRead,
		Sequence:    m.Sequence,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
