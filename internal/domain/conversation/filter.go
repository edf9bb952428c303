package conversation

import (
	"strings"
	"time"
)

// Filter enumerates every supported chat list filter. Nil or empty fields are ignored.
type Filter struct {
	PlatformID        *string
	PlatformAccountID *string
	JobTypeID         *string
	JobPostingID      *string
	Statuses          []Status
	// Search matches candidate username or name, case-insensitive.
	Search *string
	// UnreadOnly keeps chats with unread candidate messages.
	UnreadOnly bool
	// NeedsFollowUpAt keeps chats whose deadline passed at the given instant.
	// Chats without a deadline are never due.
	NeedsFollowUpAt *time.Time
}

// Pagination holds 1-based page parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Normalize clamps the pagination to sane bounds.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Matches applies the filter to a chat in memory.
func (f Filter) Matches(chat *Chat) bool {
	if f.PlatformID != nil && chat.PlatformID != *f.PlatformID {
		return false
	}
	if f.PlatformAccountID != nil && chat.PlatformAccountID != *f.PlatformAccountID {
		return false
	}
	if f.JobTypeID != nil && (chat.JobTypeID == nil || *chat.JobTypeID != *f.JobTypeID) {
		return false
	}
	if f.JobPostingID != nil && (chat.JobPostingID == nil || *chat.JobPostingID != *f.JobPostingID) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, chat.Status) {
		return false
	}
	if f.Search != nil && *f.Search != "" && !containsFold(chat.CandidateUsername, *f.Search) && !containsFold(chat.CandidateName, *f.Search) {
		return false
	}
	if f.UnreadOnly && chat.UnreadCount == 0 {
		return false
	}
	if f.NeedsFollowUpAt != nil {
		if chat.FollowUpDate == nil || !f.NeedsFollowUpAt.After(*chat.FollowUpDate) {
			return false
		}
	}
	return true
}

func containsStatus(statuses []Status, s Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsFold(value, needle string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}
