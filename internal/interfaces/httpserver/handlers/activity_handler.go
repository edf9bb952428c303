package handlers

import (
	"context"
	"io"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/export"
)

// ActivityHandler serves operator activity analytics.
type ActivityHandler struct {
	service activity.Service
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(service activity.Service) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// ListActivity summarizes activity over the filter's day range.
func (h *ActivityHandler) ListActivity(ctx context.Context, filter activity.Filter) (*activity.Summary, error) {
	return h.service.ListActivity(ctx, filter)
}

// ExportActivity writes the same summary as a spreadsheet. The summary is
// loaded before anything is written so errors can still become JSON.
func (h *ActivityHandler) ExportActivity(ctx context.Context, filter activity.Filter) (func(io.Writer) error, error) {
	summary, err := h.service.ListActivity(ctx, filter)
	if err != nil {
		return nil, err
	}
	return func(w io.Writer) error {
		return export.WriteActivityXLSX(w, summary)
	}, nil
}
