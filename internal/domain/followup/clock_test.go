package followup_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/followup"
)

func TestComputeFollowUpDate(t *testing.T) {
	base := time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name     string
		last     time.Time
		days     int
		expected time.Time
	}{
		{"two days", base, 2, time.Date(2024, 3, 11, 22, 30, 0, 0, time.UTC)},
		{"month rollover", time.Date(2024, 1, 30, 8, 0, 0, 0, time.UTC), 3, time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)},
		{"leap day", time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		// 2024-03-10 is a DST switch in New York; UTC arithmetic keeps a full 48h.
		{"across DST in local zone", base.In(newYork), 2, time.Date(2024, 3, 11, 22, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := followup.ComputeFollowUpDate(tt.last, tt.days)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestRecompute(t *testing.T) {
	assert.Nil(t, followup.Recompute(nil, 2))

	last := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got := followup.Recompute(&last, 5)
	require.NotNil(t, got)
	assert.True(t, got.Equal(last.AddDate(0, 0, 5)))
}

func TestIsOnTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Second)
	after := now.Add(time.Second)

	tests := []struct {
		name     string
		deadline *time.Time
		expected bool
	}{
		{"no deadline", nil, true},
		{"deadline in future", &after, true},
		{"deadline exactly now", &now, true},
		{"deadline passed", &before, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, followup.IsOnTime(now, tt.deadline))
			if tt.deadline != nil {
				assert.Equal(t, !tt.expected, followup.IsDue(now, tt.deadline))
			}
		})
	}

	assert.False(t, followup.IsDue(now, nil))
}

func TestDayKey(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2024-05-02 03:00 JST is 2024-05-01 18:00 UTC.
	got := followup.DayKey(time.Date(2024, 5, 2, 3, 0, 0, 0, tokyo))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got)
}
