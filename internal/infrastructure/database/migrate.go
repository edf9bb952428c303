package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/database/entities"
)

// AutoMigrate applies schema changes for every unibox table.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Platform{},
		&entities.PlatformAccount{},
		&entities.JobType{},
		&entities.JobPosting{},
		&entities.Chat{},
		&entities.Message{},
		&entities.DailyActivity{},
		&entities.DailyActivityChat{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema migrated")
	return nil
}
