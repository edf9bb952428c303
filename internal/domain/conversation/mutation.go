package conversation

import (
	"time"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/followup"
)

// ApplyMessage advances the chat's derived fields for a message written at.
// It returns the message's creation time and sequence.
//
// The creation time never moves behind the chat's last message so
// lastMessageDate stays monotonic when clocks disagree.
func ApplyMessage(chat *Chat, author AuthorKind, at time.Time) (time.Time, int64) {
	createdAt := at.UTC()
	if chat.LastMessageDate != nil && createdAt.Before(*chat.LastMessageDate) {
		createdAt = chat.LastMessageDate.UTC()
	}

	chat.LastSequence++
	chat.LastMessageDate = &createdAt
	if author == AuthorCandidate {
		chat.UnreadCount++
	}
	chat.FollowUpDate = followup.Recompute(chat.LastMessageDate, chat.FollowUpInterval)
	chat.UpdatedAt = createdAt

	return createdAt, chat.LastSequence
}

// ApplyFollowUpInterval sets the interval and recomputes the deadline.
func ApplyFollowUpInterval(chat *Chat, days int) {
	chat.FollowUpInterval = days
	chat.FollowUpDate = followup.Recompute(chat.LastMessageDate, days)
}
