package entities

import (
	"time"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
)

// Platform is the persisted hiring platform.
type Platform struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(128);not null"`
	Slug      string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Platform) TableName() string {
	return "platforms"
}

func NewSchemaPlatform(p *directory.Platform) *Platform {
	return &Platform{ID: p.ID, Name: p.Name, Slug: p.Slug, CreatedAt: p.CreatedAt}
}

func (p *Platform) EtoD() *directory.Platform {
	return &directory.Platform{ID: p.ID, Name: p.Name, Slug: p.Slug, CreatedAt: p.CreatedAt}
}

// PlatformAccount is the persisted operator login on a platform.
type PlatformAccount struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	PlatformID string    `gorm:"type:uuid;index:idx_account_platform_active;not null"`
	Name       string    `gorm:"type:varchar(128);not null"`
	Username   string    `gorm:"type:varchar(128)"`
	IsActive   bool      `gorm:"index:idx_account_platform_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (PlatformAccount) TableName() string {
	return "platform_accounts"
}

func NewSchemaPlatformAccount(a *directory.PlatformAccount) *PlatformAccount {
	return &PlatformAccount{
		ID:         a.ID,
		PlatformID: a.PlatformID,
		Name:       a.Name,
		Username:   a.Username,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
	}
}

func (a *PlatformAccount) EtoD() *directory.PlatformAccount {
	return &directory.PlatformAccount{
		ID:         a.ID,
		PlatformID: a.PlatformID,
		Name:       a.Name,
		Username:   a.Username,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
	}
}

// JobType is the persisted role category.
type JobType struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (JobType) TableName() string {
	return "job_types"
}

func NewSchemaJobType(j *directory.JobType) *JobType {
	return &JobType{ID: j.ID, Name: j.Name, CreatedAt: j.CreatedAt}
}

func (j *JobType) EtoD() *directory.JobType {
	return &directory.JobType{ID: j.ID, Name: j.Name, CreatedAt: j.CreatedAt}
}

// JobPosting is the persisted opening.
type JobPosting struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	JobTypeID  string    `gorm:"type:uuid;index;not null"`
	PlatformID string    `gorm:"type:uuid;index;not null"`
	Title      string    `gorm:"type:varchar(256);not null"`
	URL        string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

func NewSchemaJobPosting(p *directory.JobPosting) *JobPosting {
	return &JobPosting{
		ID:         p.ID,
		JobTypeID:  p.JobTypeID,
		PlatformID: p.PlatformID,
		Title:      p.Title,
		URL:        p.URL,
		CreatedAt:  p.CreatedAt,
	}
}

func (p *JobPosting) EtoD() *directory.JobPosting {
	return &directory.JobPosting{
		ID:         p.ID,
		JobTypeID:  p.JobTypeID,
		PlatformID: p.PlatformID,
		Title:      p.Title,
		URL:        p.URL,
		CreatedAt:  p.CreatedAt,
	}
}
