package activity

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/followup"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/retry"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// MaxRangeDays bounds a single activity query.
const MaxRangeDays = 366

// Service records and reports operator response activity.
type Service interface {
	RecordOperatorMessage(ctx context.Context, operatorID, chatID string, sentAt time.Time, wasOnTime bool) (*DailyActivity, error)
	ListActivity(ctx context.Context, filter Filter) (*Summary, error)
}

type service struct {
	repo   Repository
	policy retry.Policy
	log    zerolog.Logger
}

// NewService wires the activity aggregator with its repository.
func NewService(repo Repository, policy retry.Policy, log zerolog.Logger) Service {
	if policy.Retryable == nil {
		policy.Retryable = func(err error) bool {
			return platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict)
		}
	}
	return &service{
		repo:   repo,
		policy: policy,
		log:    log.With().Str("component", "activity-service").Logger(),
	}
}

func (s *service) RecordOperatorMessage(ctx context.Context, operatorID, chatID string, sentAt time.Time, wasOnTime bool) (*DailyActivity, error) {
	if strings.TrimSpace(operatorID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"operator id is required", nil, "activity-operator-required")
	}
	if strings.TrimSpace(chatID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"chat id is required", nil, "activity-chat-required")
	}

	inc := Increment{
		OperatorID: operatorID,
		ChatID:     chatID,
		Day:        followup.DayKey(sentAt),
		OnTime:     wasOnTime,
	}

	record, err := retry.ExecuteWithResult(ctx, s.policy, func(ctx context.Context, attempt int) (*DailyActivity, error) {
		return s.repo.Increment(ctx, inc)
	})
	if err != nil {
		s.log.Error().Err(err).Str("operator_id", operatorID).Str("chat_id", chatID).Msg("record operator message")
		return nil, err
	}

	s.log.Debug().
		Str("operator_id", operatorID).
		Time("day", inc.Day).
		Bool("on_time", wasOnTime).
		Int64("total", record.TotalMessages).
		Msg("operator activity recorded")
	return record, nil
}

func (s *service) ListActivity(ctx context.Context, filter Filter) (*Summary, error) {
	filter.From = followup.DayKey(filter.From)
	filter.To = followup.DayKey(filter.To)
	if filter.To.Before(filter.From) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"range end is before range start", nil, "activity-range-inverted")
	}
	if filter.To.Sub(filter.From) > MaxRangeDays*24*time.Hour {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"range is too long", nil, "activity-range-too-long")
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return Summarize(records), nil
}
