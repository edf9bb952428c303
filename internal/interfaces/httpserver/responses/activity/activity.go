// Package activityres contains HTTP response DTOs for activity analytics.
package activityres

import (
	"time"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
)

// ActivityResponse is an activity summary over a day range.
type ActivityResponse struct {
	Object     string  `json:"object"`
	OperatorID *string `json:"operator_id,omitempty"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	*activity.Summary
}

// NewActivityResponse maps a summary for the requested range.
func NewActivityResponse(filter activity.Filter, summary *activity.Summary) *ActivityResponse {
	return &ActivityResponse{
		Object:     "activity.summary",
		OperatorID: filter.OperatorID,
		From:       filter.From.Format(time.DateOnly),
		To:         filter.To.Format(time.DateOnly),
		Summary:    summary,
	}
}
