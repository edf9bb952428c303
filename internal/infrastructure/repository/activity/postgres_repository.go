package activity

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/database"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/database/entities"
)

// PostgresRepository stores daily activity with single-statement upserts so
// concurrent increments on the same (operator, day) never lose updates.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Increment(ctx context.Context, inc domain.Increment) (*domain.DailyActivity, error) {
	var onTime, offTime int64
	if inc.OnTime {
		onTime = 1
	} else {
		offTime = 1
	}
	now := time.Now().UTC()

	var out *domain.DailyActivity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := entities.DailyActivity{
			OperatorID:      inc.OperatorID,
			Day:             inc.Day,
			MessagesOnTime:  onTime,
			MessagesOffTime: offTime,
			TotalMessages:   1,
			UpdatedAt:       now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "operator_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{
				"messages_on_time":  gorm.Expr("daily_activity.messages_on_time + ?", onTime),
				"messages_off_time": gorm.Expr("daily_activity.messages_off_time + ?", offTime),
				"total_messages":    gorm.Expr("daily_activity.total_messages + 1"),
				"updated_at":        now,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entities.DailyActivityChat{
			OperatorID: inc.OperatorID,
			Day:        inc.Day,
			ChatID:     inc.ChatID,
			CreatedAt:  now,
		}).Error; err != nil {
			return err
		}

		var stored entities.DailyActivity
		if err := tx.Where("operator_id = ? AND day = ?", inc.OperatorID, inc.Day).First(&stored).Error; err != nil {
			return err
		}

		var chats []string
		if err := tx.Model(&entities.DailyActivityChat{}).
			Where("operator_id = ? AND day = ?", inc.OperatorID, inc.Day).
			Order("created_at ASC").
			Pluck("chat_id", &chats).Error; err != nil {
			return err
		}

		out = stored.EtoD(chats)
		return nil
	})
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to record daily activity", "activity-increment")
	}
	return out, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter domain.Filter) ([]*domain.DailyActivity, error) {
	rowsQuery := r.db.WithContext(ctx).Where("day >= ? AND day <= ?", filter.From, filter.To)
	chatsQuery := r.db.WithContext(ctx).Model(&entities.DailyActivityChat{}).Where("day >= ? AND day <= ?", filter.From, filter.To)
	if filter.OperatorID != nil {
		rowsQuery = rowsQuery.Where("operator_id = ?", *filter.OperatorID)
		chatsQuery = chatsQuery.Where("operator_id = ?", *filter.OperatorID)
	}

	var rows []entities.DailyActivity
	if err := rowsQuery.Order("day ASC").Order("operator_id ASC").Find(&rows).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list daily activity", "activity-list")
	}

	var chatRows []entities.DailyActivityChat
	if err := chatsQuery.Order("created_at ASC").Find(&chatRows).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list activity chats", "activity-list-chats")
	}

	type key struct {
		operatorID string
		day        string
	}
	chats := make(map[key][]string)
	for _, c := range chatRows {
		k := key{c.OperatorID, c.Day.Format(time.DateOnly)}
		chats[k] = append(chats[k], c.ChatID)
	}

	out := make([]*domain.DailyActivity, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD(chats[key{rows[i].OperatorID, rows[i].Day.Format(time.DateOnly)}])
	}
	return out, nil
}
