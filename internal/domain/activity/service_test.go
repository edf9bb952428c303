package activity_test

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/retry"
	repo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

var day = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func newService() activity.Service {
	return activity.NewService(repo.NewInMemoryRepository(), retry.NoRetryPolicy(), zerolog.Nop())
}

func TestRecordOperatorMessageCountsOnAndOffTime(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.RecordOperatorMessage(ctx, "op-1", "chat-1", day.Add(9*time.Hour), true)
	require.NoError(t, err)
	record, err := svc.RecordOperatorMessage(ctx, "op-1", "chat-2", day.Add(17*time.Hour), false)
	require.NoError(t, err)

	assert.True(t, record.Day.Equal(day))
	assert.Equal(t, int64(2), record.TotalMessages)
	assert.Equal(t, int64(1), record.MessagesOnTime)
	assert.Equal(t, int64(1), record.MessagesOffTime)
	assert.Equal(t, record.TotalMessages, record.MessagesOnTime+record.MessagesOffTime)
	assert.ElementsMatch(t, []string{"chat-1", "chat-2"}, record.ChatsInteracted)
	assert.InDelta(t, 0.5, record.OnTimeRate(), 1e-9)
}

func TestChatsInteractedIsASet(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RecordOperatorMessage(ctx, "op-1", "chat-1", day.Add(time.Duration(i)*time.Hour), true)
		require.NoError(t, err)
	}
	record, err := svc.RecordOperatorMessage(ctx, "op-1", "chat-1", day.Add(5*time.Hour), true)
	require.NoError(t, err)

	assert.Equal(t, int64(4), record.TotalMessages)
	assert.Equal(t, []string{"chat-1"}, record.ChatsInteracted)
}

func TestDaysAreBucketedInUTC(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 08:00 in Tokyo on the 11th is 23:00 UTC on the 10th.
	record, err := svc.RecordOperatorMessage(ctx, "op-1", "chat-1", time.Date(2024, 3, 11, 8, 0, 0, 0, tokyo), true)
	require.NoError(t, err)
	assert.True(t, record.Day.Equal(day))
}

func TestConcurrentIncrementsProduceOneRecord(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.RecordOperatorMessage(ctx, "op-1", "chat-1", day.Add(time.Duration(i)*time.Minute), i%3 != 0)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	summary, err := svc.ListActivity(ctx, activity.Filter{From: day, To: day})
	require.NoError(t, err)
	require.Len(t, summary.Records, 1)

	record := summary.Records[0]
	assert.Equal(t, int64(n), record.TotalMessages)
	assert.Equal(t, record.TotalMessages, record.MessagesOnTime+record.MessagesOffTime)
	assert.Equal(t, int64(17), record.MessagesOffTime)
}

func TestRecordOperatorMessageValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.RecordOperatorMessage(ctx, "", "chat-1", day, true)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, err = svc.RecordOperatorMessage(ctx, "op-1", " ", day, true)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestListActivityFiltersByOperatorAndRange(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RecordOperatorMessage(ctx, "op-1", "chat-1", day.AddDate(0, 0, i).Add(time.Hour), true)
		require.NoError(t, err)
	}
	_, err := svc.RecordOperatorMessage(ctx, "op-2", "chat-9", day.Add(time.Hour), false)
	require.NoError(t, err)

	operator := "op-1"
	summary, err := svc.ListActivity(ctx, activity.Filter{OperatorID: &operator, From: day, To: day.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, summary.Records, 2)
	assert.True(t, summary.Records[0].Day.Before(summary.Records[1].Day))
	assert.Equal(t, int64(2), summary.TotalMessages)

	all, err := svc.ListActivity(ctx, activity.Filter{From: day, To: day.AddDate(0, 0, 5)})
	require.NoError(t, err)
	assert.Len(t, all.Records, 4)
}

func TestListActivityRejectsBadRanges(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.ListActivity(ctx, activity.Filter{From: day, To: day.AddDate(0, 0, -1)})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, err = svc.ListActivity(ctx, activity.Filter{From: day, To: day.AddDate(2, 0, 0)})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestSummarize(t *testing.T) {
	records := []*activity.DailyActivity{
		{OperatorID: "op-1", Day: day, MessagesOnTime: 3, MessagesOffTime: 1, TotalMessages: 4, ChatsInteracted: []string{"a", "b"}},
		{OperatorID: "op-1", Day: day.AddDate(0, 0, 2), MessagesOnTime: 1, MessagesOffTime: 1, TotalMessages: 2, ChatsInteracted: []string{"b", "c"}},
	}

	summary := activity.Summarize(records)
	assert.Equal(t, int64(6), summary.TotalMessages)
	assert.Equal(t, int64(4), summary.MessagesOnTime)
	assert.Equal(t, int64(2), summary.MessagesOffTime)
	assert.Equal(t, 2, summary.ActiveDays)
	assert.Equal(t, 3, summary.ChatsInteracted)
	assert.InDelta(t, 3.0, summary.AveragePerDay, 1e-9)
	assert.InDelta(t, 66.666, summary.OnTimePercentage, 0.01)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := activity.Summarize(nil)
	assert.NotNil(t, summary.Records)
	assert.Zero(t, summary.TotalMessages)
	assert.Zero(t, summary.OnTimePercentage)
	assert.Zero(t, summary.AveragePerDay)
}
