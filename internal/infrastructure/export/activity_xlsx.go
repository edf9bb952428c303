// Package export renders analytics as downloadable spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
)

const activitySheet = "Activity"

var activityHeaders = []string{
	"Operator", "Day", "On time", "Off time", "Total", "On-time %", "Chats",
}

// WriteActivityXLSX writes one row per daily record followed by a totals row.
func WriteActivityXLSX(w io.Writer, summary *activity.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", activitySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range activityHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(activitySheet, cell, header); err != nil {
			return err
		}
	}

	row := 2
	for _, record := range summary.Records {
		values := []any{
			record.OperatorID,
			record.Day.UTC().Format("2006-01-02"),
			record.MessagesOnTime,
			record.MessagesOffTime,
			record.TotalMessages,
			percent(record.OnTimeRate()),
			len(record.ChatsInteracted),
		}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	totals := []any{
		"Total",
		fmt.Sprintf("%d active days, %.2f per day", summary.ActiveDays, summary.AveragePerDay),
		summary.MessagesOnTime,
		summary.MessagesOffTime,
		summary.TotalMessages,
		round2(summary.OnTimePercentage),
		summary.ChatsInteracted,
	}
	if err := setRow(f, row, totals); err != nil {
		return err
	}

	if err := f.SetColWidth(activitySheet, "A", "B", 28); err != nil {
		return err
	}
	if err := f.SetPanes(activitySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

// ActivityFilename names an export for the inclusive day range.
func ActivityFilename(filter activity.Filter) string {
	name := fmt.Sprintf("activity_%s_%s", filter.From.UTC().Format("20060102"), filter.To.UTC().Format("20060102"))
	if filter.OperatorID != nil {
		name += "_" + sanitizeFilename(*filter.OperatorID)
	}
	return name + ".xlsx"
}

func setRow(f *excelize.File, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(activitySheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func percent(rate float64) float64 {
	return round2(rate * 100)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
