package directory

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/database"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/database/entities"
)

// PostgresRepository persists the directory via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreatePlatform(ctx context.Context, platform *domain.Platform) error {
	row := entities.NewSchemaPlatform(platform)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return database.TranslateError(ctx, err, "failed to create platform", "platform-create")
	}
	platform.CreatedAt = row.CreatedAt
	return nil
}

func (r *PostgresRepository) GetPlatform(ctx context.Context, id string) (*domain.Platform, error) {
	var row entities.Platform
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "platform not found", "platform-not-found")
	}
	return row.EtoD(), nil
}

func (r *PostgresRepository) ListPlatforms(ctx context.Context) ([]*domain.Platform, error) {
	var rows []entities.Platform
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list platforms", "platform-list")
	}
	out := make([]*domain.Platform, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, nil
}

func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.PlatformAccount) error {
	row := entities.NewSchemaPlatformAccount(account)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return database.TranslateError(ctx, err, "failed to create platform account", "account-create")
	}
	account.CreatedAt = row.CreatedAt
	return nil
}

func (r *PostgresRepository) GetAccount(ctx context.Context, id string) (*domain.PlatformAccount, error) {
	var row entities.PlatformAccount
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "platform account not found", "account-not-found")
	}
	return row.EtoD(), nil
}

func (r *PostgresRepository) ListAccounts(ctx context.Context, platformID string) ([]*domain.PlatformAccount, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if platformID != "" {
		query = query.Where("platform_id = ?", platformID)
	}
	var rows []entities.PlatformAccount
	if err := query.Find(&rows).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list platform accounts", "account-list")
	}
	out := make([]*domain.PlatformAccount, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, nil
}

func (r *PostgresRepository) SetAccountActive(ctx context.Context, id string, active bool) (*domain.PlatformAccount, error) {
	result := r.db.WithContext(ctx).Model(&entities.PlatformAccount{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return nil, database.TranslateError(ctx, result.Error, "failed to update platform account", "account-set-active")
	}
	if result.RowsAffected == 0 {
		return nil, database.TranslateError(ctx, gorm.ErrRecordNotFound, "platform account not found", "account-not-found")
	}
	return r.GetAccount(ctx, id)
}

func (r *PostgresRepository) FindActiveAccount(ctx context.Context, platformID string) (*domain.PlatformAccount, error) {
	var row entities.PlatformAccount
	if err := r.db.WithContext(ctx).
		Where("platform_id = ? AND is_active = ?", platformID, true).
		Order("created_at ASC").
		First(&row).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "no active account for platform", "account-active-not-found")
	}
	return row.EtoD(), nil
}

func (r *PostgresRepository) CreateJobType(ctx context.Context, jobType *domain.JobType) error {
	row := entities.NewSchemaJobType(jobType)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return database.TranslateError(ctx, err, "failed to create job type", "job-type-create")
	}
	jobType.CreatedAt = row.CreatedAt
	return nil
}

func (r *PostgresRepository) GetJobType(ctx context.Context, id string) (*domain.JobType, error) {
	var row entities.JobType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "job type not found", "job-type-not-found")
	}
	return row.EtoD(), nil
}

func (r *PostgresRepository) ListJobTypes(ctx context.Context) ([]*domain.JobType, error) {
	var rows []entities.JobType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list job types", "job-type-list")
	}
	out := make([]*domain.JobType, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, nil
}

func (r *PostgresRepository) CreateJobPosting(ctx context.Context, posting *domain.JobPosting) error {
	row := entities.NewSchemaJobPosting(posting)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return database.TranslateError(ctx, err, "failed to create job posting", "job-posting-create")
	}
	posting.CreatedAt = row.CreatedAt
	return nil
}

func (r *PostgresRepository) ListJobPostings(ctx context.Context, jobTypeID string) ([]*domain.JobPosting, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if jobTypeID != "" {
		query = query.Where("job_type_id = ?", jobTypeID)
	}
	var rows []entities.JobPosting
	if err := query.Find(&rows).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list job postings", "job-posting-list")
	}
	out := make([]*domain.JobPosting, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, nil
}
