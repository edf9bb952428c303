// Package ingest funnels operator and candidate messages into the
// conversation store and fans out the follow-on side effects.
package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/followup"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
	"github.com/Chibuzo15/crm-project-sub000/pkg/telemetry"
)

const tracerName = "unibox/ingest"

// Target locates the conversation. ChatID wins when set; otherwise the
// (PlatformID, CandidateUsername) pair is looked up and created on first contact.
type Target struct {
	ChatID            string
	PlatformID        string
	CandidateUsername string
	CandidateName     string
	ExternalChatID    string
}

// Author identifies who wrote the message. Operator messages must carry the
// authenticated operator id; candidate messages come from trusted adapters.
type Author struct {
	Kind         conversation.AuthorKind
	OperatorID   string
	OperatorName string
}

// Request is one inbound message.
type Request struct {
	Target      Target
	Author      Author
	Content     string
	Attachments []conversation.Attachment
	ExternalID  string
}

// Result is the committed outcome of an ingest.
type Result struct {
	Message     *conversation.Message `json:"message"`
	Chat        *conversation.Chat    `json:"chat"`
	ChatCreated bool                  `json:"chat_created"`
	// Duplicate marks a redelivery of an external id already stored; nothing
	// was written or broadcast.
	Duplicate bool `json:"duplicate,omitempty"`
	// OnTime is set for operator messages only.
	OnTime *bool `json:"on_time,omitempty"`
}

// Recorder observes ingest outcomes.
type Recorder interface {
	ObserveIngest(author conversation.AuthorKind, outcome string, elapsed time.Duration)
	ObserveOnTime(onTime bool)
}

// Gateway is the single entry point for new messages.
type Gateway interface {
	Ingest(ctx context.Context, req Request) (*Result, error)
}

// Options carries optional collaborators.
type Options struct {
	Sanitizer *telemetry.Sanitizer
	Recorder  Recorder
}

type gateway struct {
	conversations conversation.Service
	directory     directory.Service
	activity      activity.Service
	notifier      *realtime.Notifier
	sanitizer     *telemetry.Sanitizer
	recorder      Recorder
	log           zerolog.Logger
}

// NewGateway wires the ingest pipeline.
func NewGateway(
	conversations conversation.Service,
	dir directory.Service,
	activitySvc activity.Service,
	notifier *realtime.Notifier,
	opts Options,
	log zerolog.Logger,
) Gateway {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &gateway{
		conversations: conversations,
		directory:     dir,
		activity:      activitySvc,
		notifier:      notifier,
		sanitizer:     opts.Sanitizer,
		recorder:      recorder,
		log:           log.With().Str("component", "ingest-gateway").Logger(),
	}
}

func (g *gateway) Ingest(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ingest.message",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("message.author", string(req.Author.Kind)),
			attribute.String("chat.id", req.Target.ChatID),
			attribute.String("platform.id", req.Target.PlatformID),
			attribute.String("candidate.username", g.sanitizer.SanitizeUsername(req.Target.CandidateUsername)),
			attribute.Int("message.attachments", len(req.Attachments)),
		),
	)
	defer span.End()

	result, err := g.ingest(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.recorder.ObserveIngest(req.Author.Kind, outcome(err), time.Since(start))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("chat.id", result.Chat.ID),
		attribute.String("message.id", result.Message.ID),
		attribute.Int64("message.sequence", result.Message.Sequence),
		attribute.Bool("chat.created", result.ChatCreated),
		attribute.Bool("message.duplicate", result.Duplicate),
	)
	g.recorder.ObserveIngest(req.Author.Kind, "ok", time.Since(start))
	return result, nil
}

func (g *gateway) ingest(ctx context.Context, req Request) (*Result, error) {
	if err := validateAuthor(ctx, req.Author); err != nil {
		return nil, err
	}
	if err := conversation.ValidateMessageInput(ctx, req.Content, req.Attachments); err != nil {
		return nil, err
	}

	chat, created, err := g.resolveChat(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	params := conversation.NewMessageParams{
		ChatID:      chat.ID,
		Author:      req.Author.Kind,
		Content:     req.Content,
		Attachments: req.Attachments,
	}
	if req.Author.Kind == conversation.AuthorOperator {
		operatorID := req.Author.OperatorID
		params.SenderID = &operatorID
	}
	if externalID := strings.TrimSpace(req.ExternalID); externalID != "" {
		params.ExternalID = &externalID
	}

	appended, err := g.conversations.CreateMessage(ctx, params)
	if err != nil {
		if created {
			// The chat row is already committed; operators still need to see it.
			g.notifier.ChatCreated(context.WithoutCancel(ctx), chat)
			g.log.Warn().Err(err).
				Str("chat_id", chat.ID).
				Msg("first-contact chat created but message append failed")
		}
		return nil, err
	}

	result := &Result{Message: appended.Message, Chat: appended.Chat, ChatCreated: created}
	if appended.Duplicate {
		result.Duplicate = true
		g.log.Info().
			Str("chat_id", result.Chat.ID).
			Str("message_id", result.Message.ID).
			Str("external_id", *params.ExternalID).
			Msg("redelivered message ignored")
		return result, nil
	}
	if req.Author.Kind == conversation.AuthorOperator {
		onTime := followup.IsOnTime(appended.Message.CreatedAt, appended.PreviousFollowUpDate)
		result.OnTime = &onTime
		g.recorder.ObserveOnTime(onTime)
	}

	g.afterCommit(ctx, req.Author, result)

	g.log.Info().
		Str("chat_id", result.Chat.ID).
		Str("message_id", result.Message.ID).
		Str("author", string(req.Author.Kind)).
		Str("content", g.sanitizer.SanitizeContent(req.Content)).
		Bool("chat_created", created).
		Msg("message ingested")
	return result, nil
}

// afterCommit runs the activity rollup and the broadcast concurrently. Both
// only ever see committed state, and neither can fail the ingest.
func (g *gateway) afterCommit(ctx context.Context, author Author, result *Result) {
	sideCtx := context.WithoutCancel(ctx)
	var eg errgroup.Group

	if result.OnTime != nil {
		onTime := *result.OnTime
		eg.Go(func() error {
			record, err := g.activity.RecordOperatorMessage(sideCtx, author.OperatorID, result.Chat.ID, result.Message.CreatedAt, onTime)
			if err != nil {
				g.log.Error().Err(err).
					Str("operator_id", author.OperatorID).
					Str("message_id", result.Message.ID).
					Msg("activity rollup failed after commit")
				return nil
			}
			g.notifier.ActivityUpdated(sideCtx, record)
			return nil
		})
	}

	eg.Go(func() error {
		if result.ChatCreated {
			g.notifier.ChatCreated(sideCtx, result.Chat)
		}
		g.notifier.MessageCreated(sideCtx, result.Chat, result.Message)
		return nil
	})

	_ = eg.Wait()
}

func (g *gateway) resolveChat(ctx context.Context, target Target) (*conversation.Chat, bool, error) {
	if chatID := strings.TrimSpace(target.ChatID); chatID != "" {
		chat, err := g.conversations.GetChat(ctx, chatID)
		if err != nil {
			return nil, false, err
		}
		return chat, false, nil
	}

	username := strings.TrimSpace(target.CandidateUsername)
	if strings.TrimSpace(target.PlatformID) == "" || username == "" {
		return nil, false, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"either chat id or platform id and candidate username are required", nil, "ingest-target-required")
	}

	chat, err := g.conversations.FindChatByCandidate(ctx, target.PlatformID, username)
	if err == nil {
		return chat, false, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, false, err
	}

	account, err := g.directory.ResolveActiveAccount(ctx, target.PlatformID)
	if err != nil {
		return nil, false, err
	}

	return g.conversations.FindOrCreateCandidateChat(ctx, conversation.NewChatParams{
		PlatformID:        target.PlatformID,
		PlatformAccountID: account.ID,
		CandidateUsername: username,
		CandidateName:     target.CandidateName,
		ExternalID:        target.ExternalChatID,
	})
}

func validateAuthor(ctx context.Context, author Author) error {
	switch author.Kind {
	case conversation.AuthorOperator:
		if strings.TrimSpace(author.OperatorID) == "" {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
				"operator messages require an authenticated operator", nil, "ingest-operator-required")
		}
	case conversation.AuthorCandidate:
	default:
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"unknown author kind", nil, "ingest-author-invalid")
	}
	return nil
}

func outcome(err error) string {
	if pe := platformerrors.GetPlatformError(err); pe != nil {
		return strings.ToLower(string(pe.Type))
	}
	return "error"
}

type noopRecorder struct{}

func (noopRecorder) ObserveIngest(conversation.AuthorKind, string, time.Duration) {}
func (noopRecorder) ObserveOnTime(bool)                                          {}
