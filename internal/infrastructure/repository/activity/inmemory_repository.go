package activity

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
)

type dayKey struct {
	operatorID string
	day        int64
}

type memoryRecord struct {
	activity domain.DailyActivity
	chatSet  map[string]struct{}
}

// InMemoryRepository keeps daily activity in a map. Increment holds the write
// lock for the whole create-or-update step.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[dayKey]*memoryRecord
	now     func() time.Time
}

// NewInMemoryRepository returns an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[dayKey]*memoryRecord),
		now:     time.Now,
	}
}

func (r *InMemoryRepository) Increment(ctx context.Context, inc domain.Increment) (*domain.DailyActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := dayKey{operatorID: inc.OperatorID, day: inc.Day.Unix()}
	record, ok := r.records[key]
	if !ok {
		record = &memoryRecord{
			activity: domain.DailyActivity{OperatorID: inc.OperatorID, Day: inc.Day, ChatsInteracted: []string{}},
			chatSet:  make(map[string]struct{}),
		}
		r.records[key] = record
	}

	record.activity.TotalMessages++
	if inc.OnTime {
		record.activity.MessagesOnTime++
	} else {
		record.activity.MessagesOffTime++
	}
	if _, seen := record.chatSet[inc.ChatID]; !seen {
		record.chatSet[inc.ChatID] = struct{}{}
		record.activity.ChatsInteracted = append(record.activity.ChatsInteracted, inc.ChatID)
	}
	record.activity.UpdatedAt = r.now().UTC()

	return cloneActivity(&record.activity), nil
}

func (r *InMemoryRepository) List(ctx context.Context, filter domain.Filter) ([]*domain.DailyActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.DailyActivity, 0)
	for _, record := range r.records {
		a := &record.activity
		if filter.OperatorID != nil && a.OperatorID != *filter.OperatorID {
			continue
		}
		if a.Day.Before(filter.From) || a.Day.After(filter.To) {
			continue
		}
		out = append(out, cloneActivity(a))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].OperatorID < out[j].OperatorID
	})
	return out, nil
}

func cloneActivity(a *domain.DailyActivity) *domain.DailyActivity {
	out := *a
	out.ChatsInteracted = append([]string{}, a.ChatsInteracted...)
	return &out
}
