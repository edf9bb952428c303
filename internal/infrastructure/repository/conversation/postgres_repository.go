package conversation

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/database"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/database/entities"
)

// PostgresRepository persists chats and messages via PostgreSQL using GORM.
// Every mutation of a chat's derived fields runs under a row lock in the same
// transaction as the message insert.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateChat(ctx context.Context, chat *domain.Chat) error {
	if err := r.db.WithContext(ctx).Create(entities.NewSchemaChat(chat)).Error; err != nil {
		return database.TranslateError(ctx, err, "failed to create chat", "chat-create")
	}
	return nil
}

func (r *PostgresRepository) FindOrCreateChat(ctx context.Context, chat *domain.Chat) (*domain.Chat, bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform_id"}, {Name: "candidate_username"}},
			DoNothing: true,
		}).
		Create(entities.NewSchemaChat(chat))
	if result.Error != nil {
		return nil, false, database.TranslateError(ctx, result.Error, "failed to create chat", "chat-find-or-create")
	}
	if result.RowsAffected == 1 {
		return chat.Clone(), true, nil
	}

	existing, err := r.FindChatByCandidate(ctx, chat.PlatformID, chat.CandidateUsername)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PostgresRepository) FindChatByID(ctx context.Context, id string) (*domain.Chat, error) {
	var entity entities.Chat
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "chat not found", "chat-not-found")
	}
	return entity.EtoD(), nil
}

func (r *PostgresRepository) FindChatByCandidate(ctx context.Context, platformID, username string) (*domain.Chat, error) {
	var entity entities.Chat
	if err := r.db.WithContext(ctx).
		Where("platform_id = ? AND candidate_username = ?", platformID, username).
		First(&entity).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "chat not found for candidate", "chat-candidate-not-found")
	}
	return entity.EtoD(), nil
}

func (r *PostgresRepository) ListChats(ctx context.Context, filter domain.Filter, pagination *domain.Pagination) ([]*domain.Chat, int64, error) {
	query := applyFilter(r.db.WithContext(ctx).Model(&entities.Chat{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to count chats", "chat-count")
	}

	query = query.Order("last_message_date DESC NULLS LAST").Order("created_at DESC").Order("id")
	if pagination != nil {
		query = query.Offset(pagination.Offset()).Limit(pagination.PageSize)
	}

	var rows []entities.Chat
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to list chats", "chat-list")
	}

	out := make([]*domain.Chat, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a search term into an ILIKE substring pattern that
// matches the term literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func applyFilter(query *gorm.DB, filter domain.Filter) *gorm.DB {
	if filter.PlatformID != nil {
		query = query.Where("platform_id = ?", *filter.PlatformID)
	}
	if filter.PlatformAccountID != nil {
		query = query.Where("platform_account_id = ?", *filter.PlatformAccountID)
	}
	if filter.JobTypeID != nil {
		query = query.Where("job_type_id = ?", *filter.JobTypeID)
	}
	if filter.JobPostingID != nil {
		query = query.Where("job_posting_id = ?", *filter.JobPostingID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := containsPattern(*filter.Search)
		query = query.Where(`(candidate_username ILIKE ? ESCAPE '\' OR candidate_name ILIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.UnreadOnly {
		query = query.Where("unread_count > 0")
	}
	if filter.NeedsFollowUpAt != nil {
		query = query.Where("follow_up_date IS NOT NULL AND follow_up_date < ?", filter.NeedsFollowUpAt.UTC())
	}
	return query
}

func (r *PostgresRepository) AppendMessage(ctx context.Context, chatID string, mutate domain.MessageMutation) (*domain.AppendResult, error) {
	var result *domain.AppendResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chat, err := lockChat(tx, chatID)
		if err != nil {
			return err
		}

		snapshot := chat.Clone()
		previous := snapshot.FollowUpDate
		message, err := mutate(chat)
		if err != nil {
			return err
		}

		if message.ExternalID != nil {
			var existing []*entities.Message
			if err := tx.Where("chat_id = ? AND external_id = ?", chat.ID, *message.ExternalID).Limit(1).Find(&existing).Error; err != nil {
				return err
			}
			if len(existing) > 0 {
				result = &domain.AppendResult{Message: existing[0].EtoD(), Chat: snapshot, PreviousFollowUpDate: previous, Duplicate: true}
				return nil
			}
		}

		row, err := entities.NewSchemaMessage(message)
		if err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}

		if err := tx.Model(&entities.Chat{}).Where("id = ?", chat.ID).Updates(map[string]any{
			"last_sequence":     chat.LastSequence,
			"last_message_date": chat.LastMessageDate,
			"follow_up_date":    chat.FollowUpDate,
			"unread_count":      chat.UnreadCount,
			"updated_at":        chat.UpdatedAt,
		}).Error; err != nil {
			return err
		}

		result = &domain.AppendResult{Message: row.EtoD(), Chat: chat, PreviousFollowUpDate: previous}
		return nil
	})
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to append message", "message-append")
	}
	return result, nil
}

func (r *PostgresRepository) UpdateChat(ctx context.Context, chatID string, mutate domain.ChatMutation) (*domain.Chat, error) {
	var updated *domain.Chat

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chat, err := lockChat(tx, chatID)
		if err != nil {
			return err
		}
		if err := mutate(chat); err != nil {
			return err
		}
		if err := tx.Save(entities.NewSchemaChat(chat)).Error; err != nil {
			return err
		}
		updated = chat
		return nil
	})
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to update chat", "chat-update")
	}
	return updated, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, chatID string) (*domain.ReadResult, error) {
	var result *domain.ReadResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chat, err := lockChat(tx, chatID)
		if err != nil {
			return err
		}

		marked := tx.Model(&entities.Message{}).
			Where("chat_id = ? AND is_from_us = ? AND is_read = ?", chatID, false, false).
			Update("is_read", true)
		if marked.Error != nil {
			return marked.Error
		}

		if chat.UnreadCount != 0 {
			if err := tx.Model(&entities.Chat{}).Where("id = ?", chatID).Update("unread_count", 0).Error; err != nil {
				return err
			}
			chat.UnreadCount = 0
		}

		result = &domain.ReadResult{Chat: chat, MessagesMarked: marked.RowsAffected}
		return nil
	})
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to mark chat read", "chat-mark-read")
	}
	return result, nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, chatID string, afterSequence int64, limit int) ([]*domain.Message, error) {
	query := r.db.WithContext(ctx).
		Where("chat_id = ? AND sequence > ?", chatID, afterSequence).
		Order("sequence ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []entities.Message
	if err := query.Find(&rows).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list messages", "message-list")
	}

	out := make([]*domain.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, nil
}

func (r *PostgresRepository) ListFollowUpsDue(ctx context.Context, from, to time.Time) ([]*domain.Chat, error) {
	var rows []entities.Chat
	if err := r.db.WithContext(ctx).
		Where("status <> ? AND follow_up_date > ? AND follow_up_date <= ?", string(domain.StatusClosed), from, to).
		Order("follow_up_date ASC").
		Find(&rows).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list due follow-ups", "chat-followups-due")
	}

	out := make([]*domain.Chat, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, nil
}

func (r *PostgresRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Chat{}).
		Where("status <> ? AND follow_up_date IS NOT NULL AND follow_up_date < ?", string(domain.StatusClosed), now).
		Count(&count).Error; err != nil {
		return 0, database.TranslateError(ctx, err, "failed to count overdue chats", "chat-count-overdue")
	}
	return count, nil
}

func lockChat(tx *gorm.DB, chatID string) (*domain.Chat, error) {
	var entity entities.Chat
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", chatID).First(&entity).Error; err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}
