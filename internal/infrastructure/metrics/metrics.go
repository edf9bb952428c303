// Package metrics provides Prometheus metrics for the unibox service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
)

var (
	// MessagesIngested counts ingest attempts by author and outcome.
	MessagesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unibox_messages_ingested_total",
			Help: "Total number of ingested messages by author and outcome",
		},
		[]string{"author", "outcome"},
	)

	// IngestDuration tracks the end-to-end ingest latency.
	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unibox_ingest_duration_seconds",
			Help:    "Duration of message ingestion including side effects",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"author"},
	)

	// OperatorReplies counts operator messages by whether they met the follow-up deadline.
	OperatorReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unibox_operator_replies_total",
			Help: "Total number of operator replies by on-time status",
		},
		[]string{"on_time"},
	)

	// ConflictRetries counts retries after lost optimistic races.
	ConflictRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unibox_conflict_retries_total",
			Help: "Total number of retries after store conflicts",
		},
		[]string{"operation"},
	)

	// ActiveSessions tracks connected websocket sessions on this instance.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unibox_ws_active_sessions",
			Help: "Number of currently connected websocket sessions",
		},
	)

	// EventsDelivered counts events queued to sessions.
	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unibox_events_delivered_total",
			Help: "Total number of events queued to websocket sessions",
		},
		[]string{"type"},
	)

	// EventsDropped counts events dropped because a session buffer was full.
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unibox_events_dropped_total",
			Help: "Total number of events dropped for slow websocket sessions",
		},
		[]string{"type"},
	)

	// FanoutErrors counts failures publishing or consuming cross-instance events.
	FanoutErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unibox_fanout_errors_total",
			Help: "Total number of cross-instance fan-out errors",
		},
		[]string{"stage"},
	)

	// OverdueChats reports conversations past their follow-up date at the last sweep.
	OverdueChats = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unibox_overdue_chats",
			Help: "Number of open conversations past their follow-up date",
		},
	)

	// FollowUpSweepDuration tracks follow-up sweep runs.
	FollowUpSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "unibox_followup_sweep_duration_seconds",
			Help:    "Duration of follow-up sweep runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FollowUpSweepErrors counts failed follow-up sweeps.
	FollowUpSweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unibox_followup_sweep_errors_total",
			Help: "Total number of errors during follow-up sweeps",
		},
	)

	// FollowUpsDue counts followup.due events emitted.
	FollowUpsDue = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unibox_followups_due_total",
			Help: "Total number of conversations announced as due for follow-up",
		},
	)
)

// RecordSessionOpened increments the session gauge.
func RecordSessionOpened() {
	ActiveSessions.Inc()
}

// RecordSessionClosed decrements the session gauge.
func RecordSessionClosed() {
	ActiveSessions.Dec()
}

// RecordConflictRetry returns a retry hook that counts retries for operation.
func RecordConflictRetry(operation string) func(attempt int, err error) {
	return func(int, error) {
		ConflictRetries.WithLabelValues(operation).Inc()
	}
}

// Recorder feeds ingest outcomes into the Prometheus collectors.
type Recorder struct{}

// NewRecorder returns an ingest recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ObserveIngest records one ingest attempt.
func (Recorder) ObserveIngest(author conversation.AuthorKind, outcome string, elapsed time.Duration) {
	MessagesIngested.WithLabelValues(string(author), outcome).Inc()
	IngestDuration.WithLabelValues(string(author)).Observe(elapsed.Seconds())
}

// ObserveOnTime records whether an operator reply met its deadline.
func (Recorder) ObserveOnTime(onTime bool) {
	OperatorReplies.WithLabelValues(strconv.FormatBool(onTime)).Inc()
}
