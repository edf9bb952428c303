package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/followup"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/retry"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// Service is the conversation store: chats, messages, and their derived state.
type Service interface {
	CreateChat(ctx context.Context, params NewChatParams) (*Chat, error)
	FindOrCreateCandidateChat(ctx context.Context, params NewChatParams) (*Chat, bool, error)
	GetChat(ctx context.Context, id string) (*Chat, error)
	FindChatByCandidate(ctx context.Context, platformID, username string) (*Chat, error)
	ListChats(ctx context.Context, filter Filter, pagination Pagination) ([]*Chat, int64, error)
	ListMessages(ctx context.Context, chatID string, afterSequence int64, limit int) ([]*Message, error)

	CreateMessage(ctx context.Context, params NewMessageParams) (*AppendResult, error)
	MarkRead(ctx context.Context, chatID string) (*ReadResult, error)
	UpdateFollowUpInterval(ctx context.Context, chatID string, days int) (*Chat, error)
	UpdateStatus(ctx context.Context, chatID string, status Status) (*Chat, error)
	UpdateNotes(ctx context.Context, chatID string, notes string) (*Chat, error)
	UpdateJobType(ctx context.Context, chatID string, jobTypeID *string) (*Chat, error)

	ListFollowUpsDue(ctx context.Context, from, to time.Time) ([]*Chat, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Options tunes the conversation service.
type Options struct {
	DefaultFollowUpDays int
	Retry               retry.Policy
	Now                 func() time.Time
}

type service struct {
	repo        Repository
	defaultDays int
	policy      retry.Policy
	now         func() time.Time
	log         zerolog.Logger
}

// NewService wires the conversation service with its repository.
func NewService(repo Repository, opts Options, log zerolog.Logger) Service {
	if opts.DefaultFollowUpDays < 1 {
		opts.DefaultFollowUpDays = followup.DefaultIntervalDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	policy := opts.Retry
	if policy.Retryable == nil {
		policy.Retryable = IsConflict
	}

	return &service{
		repo:        repo,
		defaultDays: opts.DefaultFollowUpDays,
		policy:      policy,
		now:         opts.Now,
		log:         log.With().Str("component", "conversation-service").Logger(),
	}
}

// IsConflict reports whether err is a retryable concurrency conflict.
func IsConflict(err error) bool {
	return platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict)
}

func (s *service) CreateChat(ctx context.Context, params NewChatParams) (*Chat, error) {
	chat, err := s.newChat(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	s.log.Info().Str("chat_id", chat.ID).Str("platform_id", chat.PlatformID).Msg("chat created")
	return chat, nil
}

func (s *service) FindOrCreateCandidateChat(ctx context.Context, params NewChatParams) (*Chat, bool, error) {
	chat, err := s.newChat(ctx, params)
	if err != nil {
		return nil, false, err
	}

	type outcome struct {
		chat    *Chat
		created bool
	}
	result, err := retry.ExecuteWithResult(ctx, s.policy, func(ctx context.Context, attempt int) (outcome, error) {
		stored, created, err := s.repo.FindOrCreateChat(ctx, chat.Clone())
		return outcome{chat: stored, created: created}, err
	})
	if err != nil {
		return nil, false, err
	}
	if result.created {
		s.log.Info().Str("chat_id", result.chat.ID).Str("platform_id", result.chat.PlatformID).Msg("chat created for first contact")
	}
	return result.chat, result.created, nil
}

func (s *service) newChat(ctx context.Context, params NewChatParams) (*Chat, error) {
	if err := validateID(ctx, params.PlatformID, "platform id"); err != nil {
		return nil, err
	}
	if err := validateID(ctx, params.PlatformAccountID, "platform account id"); err != nil {
		return nil, err
	}
	if err := validateOptionalID(ctx, params.JobTypeID, "job type id"); err != nil {
		return nil, err
	}
	if err := validateOptionalID(ctx, params.JobPostingID, "job posting id"); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(params.CandidateUsername)
	if username == "" {
		return nil, invalidInput(ctx, "candidate username is required", "conversation-username-required")
	}

	interval := params.FollowUpInterval
	if interval == 0 {
		interval = s.defaultDays
	}
	if interval < 1 {
		return nil, invalidInput(ctx, "follow-up interval must be at least 1 day", "conversation-interval-invalid")
	}

	now := s.now().UTC()
	return &Chat{
		ID:                uuid.NewString(),
		PlatformID:        params.PlatformID,
		PlatformAccountID: params.PlatformAccountID,
		JobPostingID:      params.JobPostingID,
		JobTypeID:         params.JobTypeID,
		CandidateUsername: username,
		CandidateName:     strings.TrimSpace(params.CandidateName),
		ExternalID:        strings.TrimSpace(params.ExternalID),
		Status:            StatusActive,
		FollowUpInterval:  interval,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (s *service) GetChat(ctx context.Context, id string) (*Chat, error) {
	if err := validateID(ctx, id, "chat id"); err != nil {
		return nil, err
	}
	return s.repo.FindChatByID(ctx, id)
}

func (s *service) FindChatByCandidate(ctx context.Context, platformID, username string) (*Chat, error) {
	if err := validateID(ctx, platformID, "platform id"); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalidInput(ctx, "candidate username is required", "conversation-username-required")
	}
	return s.repo.FindChatByCandidate(ctx, platformID, username)
}

func (s *service) ListChats(ctx context.Context, filter Filter, pagination Pagination) ([]*Chat, int64, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, 0, invalidInput(ctx, "unknown status: "+string(status), "conversation-status-invalid")
		}
	}
	pagination.Normalize()
	return s.repo.ListChats(ctx, filter, &pagination)
}

func (s *service) ListMessages(ctx context.Context, chatID string, afterSequence int64, limit int) ([]*Message, error) {
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	return s.repo.ListMessages(ctx, chatID, afterSequence, limit)
}

// ValidateMessageInput rejects a message with neither content nor attachments.
func ValidateMessageInput(ctx context.Context, content string, attachments []Attachment) error {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return invalidInput(ctx, "message content is empty and there are no attachments", "conversation-message-empty")
	}
	for _, a := range attachments {
		if strings.TrimSpace(a.StoragePath) == "" {
			return invalidInput(ctx, "attachment storage path is required", "conversation-attachment-path")
		}
		if a.Size < 0 {
			return invalidInput(ctx, "attachment size must not be negative", "conversation-attachment-size")
		}
	}
	return nil
}

func (s *service) CreateMessage(ctx context.Context, params NewMessageParams) (*AppendResult, error) {
	if err := validateID(ctx, params.ChatID, "chat id"); err != nil {
		return nil, err
	}
	if !params.Author.Valid() {
		return nil, invalidInput(ctx, "unknown author kind", "conversation-author-invalid")
	}
	if err := ValidateMessageInput(ctx, params.Content, params.Attachments); err != nil {
		return nil, err
	}

	attachments := NormalizeAttachments(params.Attachments)

	result, err := retry.ExecuteWithResult(ctx, s.policy, func(ctx context.Context, attempt int) (*AppendResult, error) {
		return s.repo.AppendMessage(ctx, params.ChatID, func(chat *Chat) (*Message, error) {
			createdAt, sequence := ApplyMessage(chat, params.Author, s.now())
			return &Message{
				ID:          uuid.NewString(),
				ChatID:      chat.ID,
				SenderID:    cloneString(params.SenderID),
				Content:     params.Content,
				IsFromUs:    params.Author == AuthorOperator,
				Attachments: attachments,
				ExternalID:  cloneString(params.ExternalID),
				IsRead:      params.Author == AuthorOperator,
				Sequence:    sequence,
				CreatedAt:   createdAt,
			}, nil
		})
	})
	if err != nil {
		return nil, err
	}

	if result.Duplicate {
		s.log.Debug().
			Str("chat_id", params.ChatID).
			Str("message_id", result.Message.ID).
			Msg("redelivered message skipped")
		return result, nil
	}

	s.log.Debug().
		Str("chat_id", params.ChatID).
		Str("message_id", result.Message.ID).
		Str("author", string(params.Author)).
		Int64("sequence", result.Message.Sequence).
		Msg("message appended")
	return result, nil
}

func (s *service) MarkRead(ctx context.Context, chatID string) (*ReadResult, error) {
	if err := validateID(ctx, chatID, "chat id"); err != nil {
		return nil, err
	}
	return retry.ExecuteWithResult(ctx, s.policy, func(ctx context.Context, attempt int) (*ReadResult, error) {
		return s.repo.MarkRead(ctx, chatID)
	})
}

func (s *service) UpdateFollowUpInterval(ctx context.Context, chatID string, days int) (*Chat, error) {
	if days < 1 {
		return nil, invalidInput(ctx, "follow-up interval must be at least 1 day", "conversation-interval-invalid")
	}
	return s.update(ctx, chatID, func(chat *Chat) error {
		ApplyFollowUpInterval(chat, days)
		return nil
	})
}

func (s *service) UpdateStatus(ctx context.Context, chatID string, status Status) (*Chat, error) {
	if !status.Valid() {
		return nil, invalidInput(ctx, "unknown status: "+string(status), "conversation-status-invalid")
	}
	return s.update(ctx, chatID, func(chat *Chat) error {
		chat.Status = status
		return nil
	})
}

func (s *service) UpdateNotes(ctx context.Context, chatID string, notes string) (*Chat, error) {
	return s.update(ctx, chatID, func(chat *Chat) error {
		chat.Notes = notes
		return nil
	})
}

func (s *service) UpdateJobType(ctx context.Context, chatID string, jobTypeID *string) (*Chat, error) {
	if err := validateOptionalID(ctx, jobTypeID, "job type id"); err != nil {
		return nil, err
	}
	return s.update(ctx, chatID, func(chat *Chat) error {
		chat.JobTypeID = cloneString(jobTypeID)
		return nil
	})
}

func (s *service) update(ctx context.Context, chatID string, mutate ChatMutation) (*Chat, error) {
	if err := validateID(ctx, chatID, "chat id"); err != nil {
		return nil, err
	}
	return retry.ExecuteWithResult(ctx, s.policy, func(ctx context.Context, attempt int) (*Chat, error) {
		return s.repo.UpdateChat(ctx, chatID, func(chat *Chat) error {
			if err := mutate(chat); err != nil {
				return err
			}
			chat.UpdatedAt = s.now().UTC()
			return nil
		})
	})
}

func (s *service) ListFollowUpsDue(ctx context.Context, from, to time.Time) ([]*Chat, error) {
	if !to.After(from) {
		return nil, nil
	}
	return s.repo.ListFollowUpsDue(ctx, from.UTC(), to.UTC())
}

func (s *service) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.CountOverdue(ctx, now.UTC())
}

func validateID(ctx context.Context, id, field string) error {
	if _, err := uuid.Parse(id); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"malformed "+field, err, "conversation-malformed-id")
	}
	return nil
}

func validateOptionalID(ctx context.Context, id *string, field string) error {
	if id == nil {
		return nil
	}
	return validateID(ctx, *id, field)
}

func invalidInput(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, message, nil, code)
}
