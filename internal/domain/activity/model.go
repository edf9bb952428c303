package activity

import "time"

// DailyActivity is one operator's message rollup for one UTC day.
type DailyActivity struct {
	OperatorID      string    `json:"operator_id"`
	Day             time.Time `json:"day"`
	MessagesOnTime  int64     `json:"messages_on_time"`
	MessagesOffTime int64     `json:"messages_off_time"`
	TotalMessages   int64     `json:"total_messages"`
	ChatsInteracted []string  `json:"chats_interacted"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OnTimeRate returns the on-time share in [0, 1]; zero when there are no messages.
func (a *DailyActivity) OnTimeRate() float64 {
	if a.TotalMessages == 0 {
		return 0
	}
	return float64(a.MessagesOnTime) / float64(a.TotalMessages)
}

// Increment is a single operator message to fold into a day's record.
type Increment struct {
	OperatorID string
	ChatID     string
	Day        time.Time
	OnTime     bool
}

// Filter selects activity records by operator and inclusive day range.
type Filter struct {
	OperatorID *string
	From       time.Time
	To         time.Time
}

// Summary aggregates a set of daily records for analytics.
type Summary struct {
	Records          []*DailyActivity `json:"records"`
	TotalMessages    int64            `json:"total_messages"`
	MessagesOnTime   int64            `json:"messages_on_time"`
	MessagesOffTime  int64            `json:"messages_off_time"`
	OnTimePercentage float64          `json:"on_time_percentage"`
	ActiveDays       int              `json:"active_days"`
	AveragePerDay    float64          `json:"average_per_day"`
	ChatsInteracted  int              `json:"chats_interacted"`
}

// Summarize folds records into a Summary. Averages are over days with activity.
func Summarize(records []*DailyActivity) *Summary {
	summary := &Summary{Records: records}
	if summary.Records == nil {
		summary.Records = []*DailyActivity{}
	}

	type dayKey struct {
		operator string
		day      int64
	}
	days := make(map[int64]struct{})
	chats := make(map[string]struct{})
	seen := make(map[dayKey]struct{})

	for _, record := range records {
		key := dayKey{operator: record.OperatorID, day: record.Day.Unix()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		summary.TotalMessages += record.TotalMessages
		summary.MessagesOnTime += record.MessagesOnTime
		summary.MessagesOffTime += record.MessagesOffTime
		days[record.Day.Unix()] = struct{}{}
		for _, chatID := range record.ChatsInteracted {
			chats[chatID] = struct{}{}
		}
	}

	summary.ActiveDays = len(days)
	summary.ChatsInteracted = len(chats)
	if summary.TotalMessages > 0 {
		summary.OnTimePercentage = float64(summary.MessagesOnTime) * 100 / float64(summary.TotalMessages)
	}
	if summary.ActiveDays > 0 {
		summary.AveragePerDay = float64(summary.TotalMessages) / float64(summary.ActiveDays)
	}
	return summary
}
