package entities

import (
	"time"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
)

// DailyActivity is the (operator, day) counter row. The composite primary key
// is the conflict target for the atomic increment.
type DailyActivity struct {
	OperatorID      string    `gorm:"type:varchar(128);primaryKey"`
	Day             time.Time `gorm:"type:date;primaryKey"`
	MessagesOnTime  int64     `gorm:"not null;default:0"`
	MessagesOffTime int64     `gorm:"not null;default:0"`
	TotalMessages   int64     `gorm:"not null;default:0"`
	UpdatedAt       time.Time
}

func (DailyActivity) TableName() string {
	return "daily_activity"
}

func (a *DailyActivity) EtoD(chats []string) *activity.DailyActivity {
	if chats == nil {
		chats = []string{}
	}
	return &activity.DailyActivity{
		OperatorID:      a.OperatorID,
		Day:             dayUTC(a.Day),
		MessagesOnTime:  a.MessagesOnTime,
		MessagesOffTime: a.MessagesOffTime,
		TotalMessages:   a.TotalMessages,
		ChatsInteracted: chats,
		UpdatedAt:       a.UpdatedAt.UTC(),
	}
}

// DailyActivityChat holds the set of chats an operator touched on a day.
type DailyActivityChat struct {
	OperatorID string    `gorm:"type:varchar(128);primaryKey"`
	Day        time.Time `gorm:"type:date;primaryKey"`
	ChatID     string    `gorm:"type:uuid;primaryKey"`
	CreatedAt  time.Time
}

func (DailyActivityChat) TableName() string {
	return "daily_activity_chats"
}

// dayUTC undoes the driver's local-zone decoding of DATE columns.
func dayUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
