// Package followup computes follow-up deadlines for conversations.
//
// All functions are pure and operate in UTC so that stored deadlines and
// comparisons never drift across DST changes.
package followup

import "time"

// DefaultIntervalDays is used when a conversation does not set its own interval.
const DefaultIntervalDays = 2

// ComputeFollowUpDate returns lastMessageDate plus intervalDays calendar days.
func ComputeFollowUpDate(lastMessageDate time.Time, intervalDays int) time.Time {
	return lastMessageDate.UTC().AddDate(0, 0, intervalDays)
}

// Recompute returns the deadline derived from an optional last message date.
// A conversation without messages has no deadline.
func Recompute(lastMessageDate *time.Time, intervalDays int) *time.Time {
	if lastMessageDate == nil {
		return nil
	}
	next := ComputeFollowUpDate(*lastMessageDate, intervalDays)
	return &next
}

// IsOnTime reports whether a reply sent at now meets the deadline.
// A nil deadline is never late.
func IsOnTime(now time.Time, followUpDate *time.Time) bool {
	if followUpDate == nil {
		return true
	}
	return !now.UTC().After(followUpDate.UTC())
}

// IsDue reports whether the deadline has passed at now. Nil is not due.
func IsDue(now time.Time, followUpDate *time.Time) bool {
	if followUpDate == nil {
		return false
	}
	return now.UTC().After(followUpDate.UTC())
}

// DayKey normalizes t to midnight UTC of the same calendar day.
func DayKey(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
