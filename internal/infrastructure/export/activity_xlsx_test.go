package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
)

func TestWriteActivityXLSX(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	summary := activity.Summarize([]*activity.DailyActivity{
		{OperatorID: "op-1", Day: day, MessagesOnTime: 3, MessagesOffTime: 1, TotalMessages: 4, ChatsInteracted: []string{"c1", "c2"}},
		{OperatorID: "op-1", Day: day.AddDate(0, 0, 1), MessagesOnTime: 2, TotalMessages: 2, ChatsInteracted: []string{"c1"}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteActivityXLSX(&buf, summary))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(activitySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, activityHeaders, rows[0])
	assert.Equal(t, []string{"op-1", "2024-03-10", "3", "1", "4", "75", "2"}, rows[1])
	assert.Equal(t, "2024-03-11", rows[2][1])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "6", rows[3][4])
	assert.Equal(t, "2", rows[3][6])
}

func TestWriteActivityXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteActivityXLSX(&buf, activity.Summarize(nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(activitySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestActivityFilename(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "activity_20240301_20240331.xlsx", ActivityFilename(activity.Filter{From: from, To: to}))

	op := "op/1"
	assert.Equal(t, "activity_20240301_20240331_op_1.xlsx", ActivityFilename(activity.Filter{OperatorID: &op, From: from, To: to}))
}
