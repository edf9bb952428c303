package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/metrics"
	obsworker "github.com/Chibuzo15/crm-project-sub000/pkg/observability/worker"
)

const (
	sweepLockName = "unibox:lock:followup-sweep"
	// cron fires at most once a minute, so the lease always expires before
	// the next run and a crashed holder cannot block it.
	sweepLeaseTTL = 48 * time.Second
	// firstWindow bounds the scan when no sweep has run yet.
	firstWindow = time.Minute
)

// Locker grants a cluster-wide lease. A nil Locker means this instance
// always sweeps.
type Locker interface {
	TryWithLock(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) (bool, error)
}

// FollowUpSweeper announces conversations whose follow-up date passed since
// the previous sweep and keeps the overdue gauge current.
type FollowUpSweeper struct {
	conversations conversation.Service
	notifier      *realtime.Notifier
	locker        Locker
	instrumenter  *obsworker.Instrumenter
	schedule      string
	now           func() time.Time
	log           zerolog.Logger

	mu        sync.Mutex
	lastSweep time.Time

	state     sync.Mutex
	ctab      *crontab.Crontab
	stopped   bool
	inflight  sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewFollowUpSweeper creates a sweeper running on a cron schedule.
// locker and instrumenter may be nil.
func NewFollowUpSweeper(
	conversations conversation.Service,
	notifier *realtime.Notifier,
	locker Locker,
	instrumenter *obsworker.Instrumenter,
	schedule string,
	log zerolog.Logger,
) *FollowUpSweeper {
	return &FollowUpSweeper{
		conversations: conversations,
		notifier:      notifier,
		locker:        locker,
		instrumenter:  instrumenter,
		schedule:      schedule,
		now:           time.Now,
		log:           log.With().Str("component", "followup-sweeper").Logger(),
	}
}

// Start sweeps once, then schedules the sweep job. Only the first call
// starts it; an invalid schedule is returned as an error.
func (s *FollowUpSweeper) Start(ctx context.Context) error {
	var err error
	s.startOnce.Do(func() {
		s.mu.Lock()
		if s.lastSweep.IsZero() {
			s.lastSweep = s.now().UTC().Add(-firstWindow)
		}
		s.mu.Unlock()

		ctab := crontab.New()
		if err = ctab.AddJob(s.schedule, func() { s.runScheduled(ctx) }); err != nil {
			ctab.Shutdown()
			err = fmt.Errorf("schedule follow-up sweep %q: %w", s.schedule, err)
			return
		}
		s.state.Lock()
		s.ctab = ctab
		s.state.Unlock()

		go s.runScheduled(ctx)
		s.log.Info().Str("schedule", s.schedule).Msg("follow-up sweeper started")
	})
	return err
}

// Stop cancels the schedule and waits for an in-flight sweep.
func (s *FollowUpSweeper) Stop() {
	s.stopOnce.Do(func() {
		s.state.Lock()
		s.stopped = true
		if s.ctab != nil {
			s.ctab.Shutdown()
		}
		s.state.Unlock()

		s.inflight.Wait()
		s.log.Info().Msg("follow-up sweeper stopped")
	})
}

// runScheduled is the cron job body. Runs after Stop are skipped.
func (s *FollowUpSweeper) runScheduled(ctx context.Context) {
	s.state.Lock()
	if s.stopped || ctx.Err() != nil {
		s.state.Unlock()
		return
	}
	s.inflight.Add(1)
	s.state.Unlock()
	defer s.inflight.Done()

	if _, err := s.Sweep(ctx); err != nil {
		s.log.Error().Err(err).Msg("follow-up sweep failed")
	}
}

// Sweep runs one pass and returns how many conversations were announced.
// The window (lastSweep, now] advances even when another instance holds the
// lease, since that instance announces the same window.
func (s *FollowUpSweeper) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	from := s.lastSweep
	if from.IsZero() {
		from = now.Add(-firstWindow)
	}

	announced := 0
	job := func(ctx context.Context) error {
		n, err := s.announce(ctx, from, now)
		announced = n
		return err
	}

	var err error
	if s.locker == nil {
		err = s.instrumenter.Run(ctx, "followup_sweep", job)
	} else {
		var ran bool
		ran, err = s.locker.TryWithLock(ctx, sweepLockName, sweepLeaseTTL, func(ctx context.Context) error {
			return s.instrumenter.Run(ctx, "followup_sweep", job)
		})
		if err == nil && !ran {
			s.log.Debug().Msg("another instance holds the sweep lease")
		}
	}
	if err != nil {
		metrics.FollowUpSweepErrors.Inc()
		return announced, err
	}

	s.lastSweep = now
	s.refreshOverdue(ctx, now)
	return announced, nil
}

func (s *FollowUpSweeper) announce(ctx context.Context, from, to time.Time) (int, error) {
	start := time.Now()
	defer func() { metrics.FollowUpSweepDuration.Observe(time.Since(start).Seconds()) }()

	due, err := s.conversations.ListFollowUpsDue(ctx, from, to)
	if err != nil {
		return 0, err
	}
	for _, chat := range due {
		s.notifier.FollowUpDue(ctx, chat)
	}
	metrics.FollowUpsDue.Add(float64(len(due)))

	if len(due) > 0 {
		s.log.Info().
			Int("due", len(due)).
			Time("from", from).
			Time("to", to).
			Msg("follow-ups announced")
	}
	return len(due), nil
}

func (s *FollowUpSweeper) refreshOverdue(ctx context.Context, now time.Time) {
	overdue, err := s.conversations.CountOverdue(ctx, now)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to count overdue conversations")
		return
	}
	metrics.OverdueChats.Set(float64(overdue))
}
